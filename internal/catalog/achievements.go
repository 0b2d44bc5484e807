package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/model"
)

// ListAchievements returns the full achievement catalog. Achievements are
// seeded as data (via migration or admin import), never hardcoded, so new
// tiers can be added without a deploy.
func (s *Store) ListAchievements(ctx context.Context) ([]model.Achievement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, display_name, description, icon, points, kind, threshold,
		       window_start_hour, window_end_hour
		FROM achievements ORDER BY category, threshold`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	var out []model.Achievement
	for rows.Next() {
		var a model.Achievement
		var kind string
		if err := rows.Scan(&a.ID, &a.Category, &a.DisplayName, &a.Description, &a.Icon, &a.Points,
			&kind, &a.Threshold, &a.WindowStartHour, &a.WindowEndHour); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.Kind = model.AchievementKind(kind)
		out = append(out, a)
	}

	return out, rows.Err()
}

// ListUserAchievements returns every achievement userID has earned.
func (s *Store) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, achievement_id, earned_at, progress
		FROM user_achievements WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	defer rows.Close()

	var out []model.UserAchievement
	for rows.Next() {
		var ua model.UserAchievement
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.EarnedAt, &ua.Progress); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		out = append(out, ua)
	}

	return out, rows.Err()
}

// AwardAchievement records userID earning achievementID. It is idempotent:
// a duplicate award is a silent no-op, so concurrent evaluators racing on
// the same predicate never conflict.
func (s *Store) AwardAchievement(ctx context.Context, userID uuid.UUID, achievementID string, progress float64) (awarded bool, err error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO user_achievements (user_id, achievement_id, progress)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		userID, achievementID, progress)
	if err != nil {
		return false, fmt.Errorf("award achievement %q to %q: %w", achievementID, userID, err)
	}

	return tag.RowsAffected() > 0, nil
}

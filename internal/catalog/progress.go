package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

// RecordAttemptResult carries what changed so the Progress & Achievement
// Engine can evaluate predicates without re-querying state it just wrote.
type RecordAttemptResult struct {
	Progress         model.UserProgress
	JustCompleted    bool // completed flipped false -> true on this attempt
	AttemptsAtCompletion int // total_attempts value at the moment completed flipped
}

// RecordAttempt upserts UserProgress for (userID, exerciseID) per §4.6: the
// attempt counters always increment; completed only ever transitions
// false -> true, on the first all-passed attempt.
func (s *Store) RecordAttempt(ctx context.Context, userID uuid.UUID, exerciseID string, allPassed bool, submission string) (RecordAttemptResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return RecordAttemptResult{}, fmt.Errorf("begin record attempt: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var wasCompleted bool
	var existed bool

	err = tx.QueryRow(ctx, `
		SELECT completed FROM user_progress WHERE user_id = $1 AND exercise_id = $2 FOR UPDATE`,
		userID, exerciseID).Scan(&wasCompleted)
	switch {
	case err == nil:
		existed = true
	case errors.Is(err, pgx.ErrNoRows):
		existed = false
	default:
		return RecordAttemptResult{}, fmt.Errorf("lock user_progress: %w", err)
	}

	nowCompleted := wasCompleted || allPassed
	justCompleted := !wasCompleted && allPassed

	if !existed {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_progress (user_id, exercise_id, completed, last_submission,
				total_attempts, successful_attempts, failed_attempts, completion_at)
			VALUES ($1, $2, $3, $4, 1, $5, $6, $7)`,
			userID, exerciseID, nowCompleted, submission,
			boolToInt(allPassed), boolToInt(!allPassed), completionTimestamp(justCompleted))
		if err != nil {
			return RecordAttemptResult{}, fmt.Errorf("insert user_progress: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx, `
			UPDATE user_progress SET
				completed = $3,
				last_submission = $4,
				total_attempts = total_attempts + 1,
				successful_attempts = successful_attempts + $5,
				failed_attempts = failed_attempts + $6,
				completion_at = CASE WHEN $7 THEN now() ELSE completion_at END
			WHERE user_id = $1 AND exercise_id = $2`,
			userID, exerciseID, nowCompleted, submission,
			boolToInt(allPassed), boolToInt(!allPassed), justCompleted)
		if err != nil {
			return RecordAttemptResult{}, fmt.Errorf("update user_progress: %w", err)
		}
	}

	var progress model.UserProgress
	err = tx.QueryRow(ctx, `
		SELECT user_id, exercise_id, completed, last_submission, first_seen_at, completion_at,
		       total_attempts, successful_attempts, failed_attempts
		FROM user_progress WHERE user_id = $1 AND exercise_id = $2`, userID, exerciseID).
		Scan(&progress.UserID, &progress.ExerciseID, &progress.Completed, &progress.LastSubmission,
			&progress.FirstSeenAt, &progress.CompletionAt, &progress.TotalAttempts,
			&progress.SuccessfulAttempts, &progress.FailedAttempts)
	if err != nil {
		return RecordAttemptResult{}, fmt.Errorf("read back user_progress: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return RecordAttemptResult{}, fmt.Errorf("commit record attempt: %w", err)
	}

	return RecordAttemptResult{
		Progress:             progress,
		JustCompleted:        justCompleted,
		AttemptsAtCompletion: progress.TotalAttempts,
	}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func completionTimestamp(justCompleted bool) *time.Time {
	if !justCompleted {
		return nil
	}
	now := time.Now()
	return &now
}

// GetProgress returns one user's progress on one exercise, or a zero-value
// UserProgress with Completed=false if the pair has never been attempted.
func (s *Store) GetProgress(ctx context.Context, userID uuid.UUID, exerciseID string) (model.UserProgress, error) {
	var p model.UserProgress

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, exercise_id, completed, last_submission, first_seen_at, completion_at,
		       total_attempts, successful_attempts, failed_attempts
		FROM user_progress WHERE user_id = $1 AND exercise_id = $2`, userID, exerciseID).
		Scan(&p.UserID, &p.ExerciseID, &p.Completed, &p.LastSubmission, &p.FirstSeenAt, &p.CompletionAt,
			&p.TotalAttempts, &p.SuccessfulAttempts, &p.FailedAttempts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProgress{UserID: userID, ExerciseID: exerciseID}, nil
		}
		return model.UserProgress{}, fmt.Errorf("get progress: %w", err)
	}

	return p, nil
}

// ListProgressForUser returns every exercise this user has attempted.
func (s *Store) ListProgressForUser(ctx context.Context, userID uuid.UUID) ([]model.UserProgress, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, exercise_id, completed, last_submission, first_seen_at, completion_at,
		       total_attempts, successful_attempts, failed_attempts
		FROM user_progress WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress for %q: %w", userID, err)
	}
	defer rows.Close()

	var out []model.UserProgress
	for rows.Next() {
		var p model.UserProgress
		if err := rows.Scan(&p.UserID, &p.ExerciseID, &p.Completed, &p.LastSubmission, &p.FirstSeenAt, &p.CompletionAt,
			&p.TotalAttempts, &p.SuccessfulAttempts, &p.FailedAttempts); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// CompletionTimestampsForUser returns the completion_at timestamp of every
// exercise the user has completed, one per exercise and not deduplicated by
// day; the caller converts them to its own location for the daily-streak
// and calendar-day predicates.
func (s *Store) CompletionTimestampsForUser(ctx context.Context, userID uuid.UUID) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT completion_at FROM user_progress
		WHERE user_id = $1 AND completion_at IS NOT NULL
		ORDER BY completion_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list completion timestamps: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan completion timestamp: %w", err)
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

// ChapterExerciseCompletion reports, for every exercise in chapterID,
// whether userID has completed it - used by the chapter/language mastery
// predicates.
func (s *Store) ChapterExerciseCompletion(ctx context.Context, userID uuid.UUID, chapterID uuid.UUID) (map[string]bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, COALESCE(p.completed, false)
		FROM exercises e
		LEFT JOIN user_progress p ON p.exercise_id = e.id AND p.user_id = $2
		WHERE e.chapter_id = $1`, chapterID, userID)
	if err != nil {
		return nil, fmt.Errorf("chapter completion: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		var completed bool
		if err := rows.Scan(&id, &completed); err != nil {
			return nil, fmt.Errorf("scan chapter completion: %w", err)
		}
		out[id] = completed
	}

	return out, rows.Err()
}

// LanguageChapterCompletion reports, for every chapter in languageID,
// whether userID has completed every exercise in it.
func (s *Store) LanguageChapterCompletion(ctx context.Context, userID uuid.UUID, languageID string) (map[uuid.UUID]bool, error) {
	chapters, err := s.ListChapters(ctx, languageID)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]bool, len(chapters))
	for _, c := range chapters {
		completion, err := s.ChapterExerciseCompletion(ctx, userID, c.ID)
		if err != nil {
			return nil, err
		}

		allComplete := len(completion) > 0
		for _, done := range completion {
			if !done {
				allComplete = false
				break
			}
		}
		out[c.ID] = allComplete
	}

	return out, nil
}

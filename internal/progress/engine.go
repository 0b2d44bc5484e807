// Package progress wraps the Catalog Store's progress tables with the
// achievement predicate evaluator: on every graded submission it updates
// UserProgress and awards any newly-earned, data-driven Achievements.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
)

// Engine evaluates achievement predicates against the Catalog Store's
// progress data. It has no state of its own; everything it needs is
// re-read from the store on each call, so multiple API instances stay
// consistent without coordinating in memory.
type Engine struct {
	store *catalog.Store
	log   logger.Logger
}

// NewEngine builds an Engine bound to a Catalog Store.
func NewEngine(store *catalog.Store, log logger.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// RecordAttempt upserts UserProgress for (userID, exerciseID) and, when
// this attempt is the one that completes the exercise, evaluates every
// achievement predicate and awards the ones newly satisfied.
func (e *Engine) RecordAttempt(ctx context.Context, userID uuid.UUID, exerciseID string, allPassed bool, submission string) (model.UserProgress, []model.UserAchievement, error) {
	result, err := e.store.RecordAttempt(ctx, userID, exerciseID, allPassed, submission)
	if err != nil {
		return model.UserProgress{}, nil, fmt.Errorf("record attempt: %w", err)
	}

	if !result.JustCompleted {
		return result.Progress, nil, nil
	}

	awarded, err := e.evaluate(ctx, userID, exerciseID, result, e.localNow(ctx, userID))
	if err != nil {
		return result.Progress, nil, fmt.Errorf("evaluate achievements: %w", err)
	}

	return result.Progress, awarded, nil
}

// localNow resolves the wall-clock time achievement predicates should
// evaluate against: userID's recorded IANA locale if set and resolvable,
// otherwise the server's own local time.
func (e *Engine) localNow(ctx context.Context, userID uuid.UUID) time.Time {
	now := time.Now()

	user, err := e.store.GetUser(ctx, userID)
	if err != nil || user.Locale == "" {
		return now.Local()
	}

	loc, err := time.LoadLocation(user.Locale)
	if err != nil {
		e.log.Warn(ctx, "unknown user locale, evaluating achievements against server time", logger.WithUserID(userID.String()))
		return now.Local()
	}

	return now.In(loc)
}

// evaluate runs each achievement's predicate, in the order ListAchievements
// returns them (category, threshold), against the state this completion
// just produced.
func (e *Engine) evaluate(ctx context.Context, userID uuid.UUID, exerciseID string, result catalog.RecordAttemptResult, now time.Time) ([]model.UserAchievement, error) {
	achievements, err := e.store.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}

	var earned []model.UserAchievement

	award := func(a model.Achievement, progressValue float64) error {
		ok, err := e.store.AwardAchievement(ctx, userID, a.ID, progressValue)
		if err != nil {
			return err
		}
		if ok {
			earned = append(earned, model.UserAchievement{UserID: userID, AchievementID: a.ID, EarnedAt: now, Progress: progressValue})
		}
		return nil
	}

	progressList, err := e.store.ListProgressForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	completedCount := 0
	for _, p := range progressList {
		if p.Completed {
			completedCount++
		}
	}

	timestamps, err := e.store.CompletionTimestampsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	localized := make([]time.Time, len(timestamps))
	for i, ts := range timestamps {
		localized[i] = ts.In(now.Location())
	}

	rollingHourCount := 0
	calendarDayCount := 0
	today := truncateToDay(now)
	for _, ts := range localized {
		if now.Sub(ts) <= time.Hour {
			rollingHourCount++
		}
		if truncateToDay(ts) == today {
			calendarDayCount++
		}
	}

	streak := longestTrailingStreak(localized, now)

	exercise, err := e.store.GetExercise(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("load exercise %q for mastery predicates: %w", exerciseID, err)
	}
	chapterCompletion, err := e.store.ChapterExerciseCompletion(ctx, userID, exercise.ChapterID)
	if err != nil {
		return nil, err
	}
	chapterComplete := allTrue(chapterCompletion)

	var languageComplete bool
	if chapterComplete {
		chapter, err := e.store.GetChapter(ctx, exercise.ChapterID)
		if err != nil {
			return nil, err
		}
		languageCompletion, err := e.store.LanguageChapterCompletion(ctx, userID, chapter.LanguageID)
		if err != nil {
			return nil, err
		}
		languageComplete = allTrueUUID(languageCompletion)
	}

	hour := now.Hour()

	for _, a := range achievements {
		switch a.Kind {
		case model.AchievementKindCumulativeCompletions:
			if completedCount >= a.Threshold {
				if err := award(a, float64(completedCount)); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindFirstTry:
			if result.AttemptsAtCompletion == 1 {
				if err := award(a, 1); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindPersistence:
			if result.Progress.TotalAttempts >= a.Threshold {
				if err := award(a, float64(result.Progress.TotalAttempts)); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindRollingHour:
			if rollingHourCount >= a.Threshold {
				if err := award(a, float64(rollingHourCount)); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindCalendarDay:
			if calendarDayCount >= a.Threshold {
				if err := award(a, float64(calendarDayCount)); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindWallClockWindow:
			if hour >= a.WindowStartHour && hour < a.WindowEndHour {
				if err := award(a, 1); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindDailyStreak:
			if streak >= a.Threshold {
				if err := award(a, float64(streak)); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindChapterComplete:
			if chapterComplete {
				if err := award(a, 1); err != nil {
					return nil, err
				}
			}

		case model.AchievementKindLanguageComplete:
			if languageComplete {
				if err := award(a, 1); err != nil {
					return nil, err
				}
			}

		default:
			e.log.Warn(ctx, "unknown achievement kind", logger.WithUserID(userID.String()))
		}
	}

	return earned, nil
}

func allTrue(m map[string]bool) bool {
	if len(m) == 0 {
		return false
	}
	for _, v := range m {
		if !v {
			return false
		}
	}
	return true
}

func allTrueUUID(m map[uuid.UUID]bool) bool {
	if len(m) == 0 {
		return false
	}
	for _, v := range m {
		if !v {
			return false
		}
	}
	return true
}

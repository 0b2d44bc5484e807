// Package model defines the entities owned by the Catalog, Fixture and
// Progress stores.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Language describes one interpreter/runtime available for grading.
type Language struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Extension    string `json:"extension"`
	Interpreter  string `json:"interpreter"`
	ExecImage    string `json:"execImage"`
	// Version is the interpreter's semver version (e.g. "3.12.4"). It is
	// checked as semver on admin upsert and stored; grading does not read it.
	Version      string `json:"version"`
	DisplayOrder int    `json:"displayOrder"`
	Enabled      bool   `json:"enabled"`
}

// Chapter groups a set of Exercises under a Language.
type Chapter struct {
	ID           uuid.UUID `json:"id"`
	LanguageID   string    `json:"languageId"`
	DisplayName  string    `json:"displayName"`
	OrderIndex   int       `json:"orderIndex"`
}

// Difficulty is a read-only catalog annotation; it never influences grading.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Exercise is one gradeable unit: a title, opaque markup description, a
// reference solution, and an ordered sequence of TestCases.
type Exercise struct {
	ID          string     `json:"id"`
	ChapterID   uuid.UUID  `json:"chapterId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Solution    string     `json:"solution"`
	StarterCode string     `json:"starterCode,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty"`
	OrderIndex  int        `json:"orderIndex"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	TestCases []TestCase `json:"testCases,omitempty"`
}

// FixtureRef names a Fixture to stage before a TestCase runs, and the
// permission mode it should be materialized with (falls back to the
// Fixture's own recorded mode when empty).
type FixtureRef struct {
	Path        string `json:"path"`
	Permissions string `json:"permissions,omitempty"`
}

// TestCase is one invocation specification judged against a submission.
type TestCase struct {
	ID                 int64             `json:"id"`
	ExerciseID         string            `json:"exerciseId"`
	OrderIndex         int               `json:"orderIndex"`
	Arguments          []string          `json:"arguments"`
	StdinLines         []string          `json:"stdinLines,omitempty"`
	ExpectedStdout     string            `json:"expectedStdout"`
	ExpectedStderr     string            `json:"expectedStderr,omitempty"`
	ExpectedExitCode   int               `json:"expectedExitCode"`
	Weight             float64           `json:"weight,omitempty"`
	Fixtures           []FixtureRef      `json:"fixtures,omitempty"`
	ExpectedOutputHash map[string]string `json:"expectedOutputFiles,omitempty"`
}

// FixtureKind distinguishes a single file from a folder of files.
type FixtureKind string

const (
	FixtureKindFile   FixtureKind = "file"
	FixtureKindFolder FixtureKind = "folder"
)

// Fixture is a content-addressed asset staged into sandboxes before a run.
type Fixture struct {
	Path        string      `json:"path"`
	Kind        FixtureKind `json:"kind"`
	Content     []byte      `json:"-"`
	Size        int64       `json:"size"`
	Permissions string      `json:"permissions"`
	ContentHash string      `json:"contentHash,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// User is a learner or administrator known to the engine.
type User struct {
	ID          uuid.UUID `json:"id"`
	ExternalID  string    `json:"externalId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	Locale      string    `json:"locale"`
	CreatedAt   time.Time `json:"createdAt"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// UserProgress tracks one (User, Exercise) pair's attempt history.
type UserProgress struct {
	UserID             uuid.UUID  `json:"userId"`
	ExerciseID         string     `json:"exerciseId"`
	Completed          bool       `json:"completed"`
	LastSubmission     string     `json:"lastSubmission,omitempty"`
	FirstSeenAt        time.Time  `json:"firstSeenAt"`
	CompletionAt       *time.Time `json:"completionAt,omitempty"`
	TotalAttempts      int        `json:"totalAttempts"`
	SuccessfulAttempts int        `json:"successfulAttempts"`
	FailedAttempts     int        `json:"failedAttempts"`
}

// AchievementKind selects which predicate evaluator applies.
type AchievementKind string

const (
	AchievementKindCumulativeCompletions AchievementKind = "cumulative_completions"
	AchievementKindFirstTry              AchievementKind = "first_try"
	AchievementKindPersistence            AchievementKind = "persistence"
	AchievementKindRollingHour            AchievementKind = "rolling_hour"
	AchievementKindCalendarDay            AchievementKind = "calendar_day"
	AchievementKindWallClockWindow        AchievementKind = "wall_clock_window"
	AchievementKindDailyStreak            AchievementKind = "daily_streak"
	AchievementKindChapterComplete        AchievementKind = "chapter_complete"
	AchievementKindLanguageComplete       AchievementKind = "language_complete"
)

// Achievement is a stable, data-driven award definition.
type Achievement struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Points      int             `json:"points"`
	Kind        AchievementKind `json:"kind"`
	Threshold   int             `json:"threshold"`
	// WindowStartHour/WindowEndHour carry the [start, end) local-hour window for
	// AchievementKindWallClockWindow; unused by other kinds.
	WindowStartHour int `json:"windowStartHour,omitempty"`
	WindowEndHour   int `json:"windowEndHour,omitempty"`
}

// UserAchievement records that a User earned an Achievement. Once present,
// it is never revoked.
type UserAchievement struct {
	UserID        uuid.UUID `json:"userId"`
	AchievementID string    `json:"achievementId"`
	EarnedAt      time.Time `json:"earnedAt"`
	Progress      float64   `json:"progress"`
}

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

var exerciseIDPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var ErrInvalidExerciseID = errors.New("catalog: exercise id must match [a-z0-9-]+")

// ListExercises returns exercise metadata (no test cases) ordered by
// (chapter order, exercise order), optionally filtered to one language.
func (s *Store) ListExercises(ctx context.Context, languageID string) ([]model.Exercise, error) {
	query := `
		SELECT e.id, e.chapter_id, e.title, e.description, e.solution, e.starter_code,
		       e.difficulty, e.order_index, e.created_at, e.updated_at
		FROM exercises e
		JOIN chapters c ON c.id = e.chapter_id
		WHERE ($1 = '' OR c.language_id = $1)
		ORDER BY c.order_index, e.order_index`

	rows, err := s.pool.Query(ctx, query, languageID)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var out []model.Exercise
	for rows.Next() {
		var e model.Exercise
		var difficulty string
		if err := rows.Scan(&e.ID, &e.ChapterID, &e.Title, &e.Description, &e.Solution, &e.StarterCode,
			&difficulty, &e.OrderIndex, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		e.Difficulty = model.Difficulty(difficulty)
		out = append(out, e)
	}

	return out, rows.Err()
}

// GetExercise returns exercise metadata without test cases.
func (s *Store) GetExercise(ctx context.Context, id string) (model.Exercise, error) {
	var e model.Exercise
	var difficulty string

	err := s.pool.QueryRow(ctx, `
		SELECT id, chapter_id, title, description, solution, starter_code, difficulty, order_index, created_at, updated_at
		FROM exercises WHERE id = $1`, id).
		Scan(&e.ID, &e.ChapterID, &e.Title, &e.Description, &e.Solution, &e.StarterCode,
			&difficulty, &e.OrderIndex, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Exercise{}, ErrNotFound
		}
		return model.Exercise{}, fmt.Errorf("get exercise %q: %w", id, err)
	}

	return e, nil
}

// GetExerciseWithTests returns an exercise and its ordered test cases,
// including each case's FixtureRefs and expected output hashes.
func (s *Store) GetExerciseWithTests(ctx context.Context, id string) (model.Exercise, error) {
	exercise, err := s.GetExercise(ctx, id)
	if err != nil {
		return model.Exercise{}, err
	}

	testCases, err := s.listTestCases(ctx, id)
	if err != nil {
		return model.Exercise{}, err
	}
	exercise.TestCases = testCases

	return exercise, nil
}

func (s *Store) listTestCases(ctx context.Context, exerciseID string) ([]model.TestCase, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, exercise_id, order_index, arguments, stdin_lines, expected_stdout,
		       expected_stderr, expected_exit_code, weight, fixtures, expected_output_hash
		FROM test_cases WHERE exercise_id = $1 ORDER BY order_index`, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("list test cases for %q: %w", exerciseID, err)
	}
	defer rows.Close()

	var out []model.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tc)
	}

	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTestCase(row rowScanner) (model.TestCase, error) {
	var tc model.TestCase
	var argsJSON, stdinJSON, fixturesJSON, hashJSON []byte

	err := row.Scan(&tc.ID, &tc.ExerciseID, &tc.OrderIndex, &argsJSON, &stdinJSON,
		&tc.ExpectedStdout, &tc.ExpectedStderr, &tc.ExpectedExitCode, &tc.Weight, &fixturesJSON, &hashJSON)
	if err != nil {
		return model.TestCase{}, fmt.Errorf("scan test case: %w", err)
	}

	if err := json.Unmarshal(argsJSON, &tc.Arguments); err != nil {
		return model.TestCase{}, fmt.Errorf("decode arguments: %w", err)
	}
	if err := json.Unmarshal(stdinJSON, &tc.StdinLines); err != nil {
		return model.TestCase{}, fmt.Errorf("decode stdin lines: %w", err)
	}
	if err := json.Unmarshal(fixturesJSON, &tc.Fixtures); err != nil {
		return model.TestCase{}, fmt.Errorf("decode fixtures: %w", err)
	}
	if err := json.Unmarshal(hashJSON, &tc.ExpectedOutputHash); err != nil {
		return model.TestCase{}, fmt.Errorf("decode expected output hash: %w", err)
	}

	return tc, nil
}

// CreateExercise inserts a new exercise and its test cases atomically.
func (s *Store) CreateExercise(ctx context.Context, e model.Exercise) (model.Exercise, error) {
	if !exerciseIDPattern.MatchString(e.ID) {
		return model.Exercise{}, ErrInvalidExerciseID
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("begin create exercise: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO exercises (id, chapter_id, title, description, solution, starter_code, difficulty, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.ChapterID, e.Title, e.Description, e.Solution, e.StarterCode, string(e.Difficulty), e.OrderIndex)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("insert exercise %q: %w", e.ID, err)
	}

	if err := replaceTestCases(ctx, tx, e.ID, e.TestCases); err != nil {
		return model.Exercise{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Exercise{}, fmt.Errorf("commit create exercise: %w", err)
	}

	return s.GetExerciseWithTests(ctx, e.ID)
}

// UpdateExercise replaces an exercise's metadata and its full test-case
// list inside one transaction: the case list is deleted and reinserted so
// an exercise is never left with a partially replaced set.
func (s *Store) UpdateExercise(ctx context.Context, id string, e model.Exercise) (model.Exercise, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("begin update exercise: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE exercises SET
			chapter_id = $2, title = $3, description = $4, solution = $5,
			starter_code = $6, difficulty = $7, order_index = $8, updated_at = now()
		WHERE id = $1`,
		id, e.ChapterID, e.Title, e.Description, e.Solution, e.StarterCode, string(e.Difficulty), e.OrderIndex)
	if err != nil {
		return model.Exercise{}, fmt.Errorf("update exercise %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return model.Exercise{}, ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM test_cases WHERE exercise_id = $1`, id); err != nil {
		return model.Exercise{}, fmt.Errorf("clear test cases for %q: %w", id, err)
	}

	if err := replaceTestCases(ctx, tx, id, e.TestCases); err != nil {
		return model.Exercise{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Exercise{}, fmt.Errorf("commit update exercise: %w", err)
	}

	return s.GetExerciseWithTests(ctx, id)
}

func replaceTestCases(ctx context.Context, tx pgx.Tx, exerciseID string, cases []model.TestCase) error {
	for _, tc := range cases {
		argsJSON, err := json.Marshal(tc.Arguments)
		if err != nil {
			return fmt.Errorf("encode arguments: %w", err)
		}
		stdinJSON, err := json.Marshal(tc.StdinLines)
		if err != nil {
			return fmt.Errorf("encode stdin lines: %w", err)
		}
		fixturesJSON, err := json.Marshal(tc.Fixtures)
		if err != nil {
			return fmt.Errorf("encode fixtures: %w", err)
		}
		hashJSON, err := json.Marshal(tc.ExpectedOutputHash)
		if err != nil {
			return fmt.Errorf("encode expected output hash: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO test_cases (exercise_id, order_index, arguments, stdin_lines, expected_stdout,
			                         expected_stderr, expected_exit_code, weight, fixtures, expected_output_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			exerciseID, tc.OrderIndex, argsJSON, stdinJSON, tc.ExpectedStdout, tc.ExpectedStderr,
			tc.ExpectedExitCode, tc.Weight, fixturesJSON, hashJSON)
		if err != nil {
			return fmt.Errorf("insert test case %d for %q: %w", tc.OrderIndex, exerciseID, err)
		}
	}

	return nil
}

// DeleteExercise removes an exercise; ON DELETE CASCADE drops its test
// cases. Fixtures and UserProgress rows referencing it are left intact per
// the contract - callers filter dangling references at read time.
func (s *Store) DeleteExercise(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete exercise %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// ExerciseReorder moves exercise id to chapterID at orderIndex.
type ExerciseReorder struct {
	ExerciseID string
	ChapterID  uuid.UUID
	OrderIndex int
}

// ReorderExercises applies every entry's (chapterId, orderIndex) in one
// transaction. Idempotent: applying the same list twice is a no-op the
// second time.
func (s *Store) ReorderExercises(ctx context.Context, entries []ExerciseReorder) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reorder exercises: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			UPDATE exercises SET chapter_id = $2, order_index = $3, updated_at = now()
			WHERE id = $1`, entry.ExerciseID, entry.ChapterID, entry.OrderIndex)
		if err != nil {
			return fmt.Errorf("reorder exercise %q: %w", entry.ExerciseID, err)
		}
	}

	return tx.Commit(ctx)
}

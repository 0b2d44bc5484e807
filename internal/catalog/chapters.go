package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

// ListChapters returns chapters for a language in display order.
func (s *Store) ListChapters(ctx context.Context, languageID string) ([]model.Chapter, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, language_id, display_name, order_index
		FROM chapters WHERE language_id = $1 ORDER BY order_index`, languageID)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	defer rows.Close()

	var out []model.Chapter
	for rows.Next() {
		var c model.Chapter
		if err := rows.Scan(&c.ID, &c.LanguageID, &c.DisplayName, &c.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) GetChapter(ctx context.Context, id uuid.UUID) (model.Chapter, error) {
	var c model.Chapter

	err := s.pool.QueryRow(ctx, `
		SELECT id, language_id, display_name, order_index FROM chapters WHERE id = $1`, id).
		Scan(&c.ID, &c.LanguageID, &c.DisplayName, &c.OrderIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Chapter{}, ErrNotFound
		}
		return model.Chapter{}, fmt.Errorf("get chapter %q: %w", id, err)
	}

	return c, nil
}

// CreateChapter inserts a new chapter, assigning its ID.
func (s *Store) CreateChapter(ctx context.Context, c model.Chapter) (model.Chapter, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO chapters (id, language_id, display_name, order_index)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.LanguageID, c.DisplayName, c.OrderIndex)
	if err != nil {
		return model.Chapter{}, fmt.Errorf("create chapter: %w", err)
	}

	return c, nil
}

// DeleteChapter removes a chapter; ON DELETE CASCADE on exercises.chapter_id
// takes care of owned exercises and, transitively, their test cases.
func (s *Store) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete chapter %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

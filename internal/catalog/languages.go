package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

// ListLanguages returns every enabled language ordered for display.
func (s *Store) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, extension, interpreter, exec_image, version, display_order, enabled
		FROM languages
		WHERE enabled
		ORDER BY display_order, id`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var out []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name, &l.Extension, &l.Interpreter, &l.ExecImage, &l.Version, &l.DisplayOrder, &l.Enabled); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, l)
	}

	return out, rows.Err()
}

// GetLanguage resolves a language by ID, including disabled ones, since the
// Sandbox Runner needs the descriptor even for a language an admin turned
// off mid-grading-window.
func (s *Store) GetLanguage(ctx context.Context, id string) (model.Language, error) {
	var l model.Language

	err := s.pool.QueryRow(ctx, `
		SELECT id, name, extension, interpreter, exec_image, version, display_order, enabled
		FROM languages WHERE id = $1`, id).
		Scan(&l.ID, &l.Name, &l.Extension, &l.Interpreter, &l.ExecImage, &l.Version, &l.DisplayOrder, &l.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Language{}, ErrNotFound
		}
		return model.Language{}, fmt.Errorf("get language %q: %w", id, err)
	}

	return l, nil
}

// UpsertLanguage creates or updates a language by its stable identifier.
func (s *Store) UpsertLanguage(ctx context.Context, l model.Language) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO languages (id, name, extension, interpreter, exec_image, version, display_order, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			extension = EXCLUDED.extension,
			interpreter = EXCLUDED.interpreter,
			exec_image = EXCLUDED.exec_image,
			version = EXCLUDED.version,
			display_order = EXCLUDED.display_order,
			enabled = EXCLUDED.enabled`,
		l.ID, l.Name, l.Extension, l.Interpreter, l.ExecImage, l.Version, l.DisplayOrder, l.Enabled)
	if err != nil {
		return fmt.Errorf("upsert language %q: %w", l.ID, err)
	}

	return nil
}

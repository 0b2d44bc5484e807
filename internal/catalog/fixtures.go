package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

// The fixture methods below mirror the fixtures table; the Fixture Store
// (internal/fixtures) owns the bytes on disk and calls through here to
// keep the catalog record in sync.

// ListFixtures returns every fixture record, file and folder alike.
func (s *Store) ListFixtures(ctx context.Context) ([]model.Fixture, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, kind, size, permissions, content_hash, created_at, updated_at
		FROM fixtures ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	defer rows.Close()

	var out []model.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, rows.Err()
}

// ListFixturesUnder returns fixtures whose path is folder or a descendant
// of folder (folder/...).
func (s *Store) ListFixturesUnder(ctx context.Context, folder string) ([]model.Fixture, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, kind, size, permissions, content_hash, created_at, updated_at
		FROM fixtures WHERE path = $1 OR path LIKE $2 ORDER BY path`, folder, folder+"/%")
	if err != nil {
		return nil, fmt.Errorf("list fixtures under %q: %w", folder, err)
	}
	defer rows.Close()

	var out []model.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, rows.Err()
}

func scanFixture(row rowScanner) (model.Fixture, error) {
	var f model.Fixture
	var kind string

	if err := row.Scan(&f.Path, &kind, &f.Size, &f.Permissions, &f.ContentHash, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return model.Fixture{}, fmt.Errorf("scan fixture: %w", err)
	}
	f.Kind = model.FixtureKind(kind)

	return f, nil
}

// GetFixture returns one fixture's metadata.
func (s *Store) GetFixture(ctx context.Context, path string) (model.Fixture, error) {
	var f model.Fixture
	var kind string

	err := s.pool.QueryRow(ctx, `
		SELECT path, kind, size, permissions, content_hash, created_at, updated_at
		FROM fixtures WHERE path = $1`, path).
		Scan(&f.Path, &kind, &f.Size, &f.Permissions, &f.ContentHash, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Fixture{}, ErrNotFound
		}
		return model.Fixture{}, fmt.Errorf("get fixture %q: %w", path, err)
	}

	return f, nil
}

// PutFixture upserts a fixture's metadata record.
func (s *Store) PutFixture(ctx context.Context, f model.Fixture) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fixtures (path, kind, size, permissions, content_hash, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (path) DO UPDATE SET
			kind = EXCLUDED.kind,
			size = EXCLUDED.size,
			permissions = EXCLUDED.permissions,
			content_hash = EXCLUDED.content_hash,
			updated_at = now()`,
		f.Path, string(f.Kind), f.Size, f.Permissions, f.ContentHash)
	if err != nil {
		return fmt.Errorf("put fixture %q: %w", f.Path, err)
	}

	return nil
}

// SetFixturePermissions updates only the permissions column.
func (s *Store) SetFixturePermissions(ctx context.Context, path, permissions string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE fixtures SET permissions = $2, updated_at = now() WHERE path = $1`, path, permissions)
	if err != nil {
		return fmt.Errorf("set permissions for %q: %w", path, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteFixture removes a single fixture's metadata record.
func (s *Store) DeleteFixture(ctx context.Context, path string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM fixtures WHERE path = $1`, path)
	if err != nil {
		return fmt.Errorf("delete fixture %q: %w", path, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteFixturesUnder removes folder and every descendant entry whose path
// begins with "<folder>/".
func (s *Store) DeleteFixturesUnder(ctx context.Context, folder string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM fixtures WHERE path = $1 OR path LIKE $2`, folder, folder+"/%")
	if err != nil {
		return fmt.Errorf("delete fixtures under %q: %w", folder, err)
	}

	return nil
}

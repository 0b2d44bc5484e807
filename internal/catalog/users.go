package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gradeflow/judge-engine/internal/model"
)

// GetOrCreateUser upserts a user by external identity-provider ID on every
// successful authentication, bumping last_login_at each time.
func (s *Store) GetOrCreateUser(ctx context.Context, externalID, email, displayName string) (model.User, error) {
	var u model.User

	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (external_id, email, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE SET
			last_login_at = now(),
			email = EXCLUDED.email
		RETURNING id, external_id, email, display_name, is_admin, locale, created_at, last_login_at`,
		externalID, email, displayName).
		Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.IsAdmin, &u.Locale, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		return model.User{}, fmt.Errorf("get or create user %q: %w", externalID, err)
	}

	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	var u model.User

	err := s.pool.QueryRow(ctx, `
		SELECT id, external_id, email, display_name, is_admin, locale, created_at, last_login_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.IsAdmin, &u.Locale, &u.CreatedAt, &u.LastLoginAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user %q: %w", id, err)
	}

	return u, nil
}

// ListUsers returns every known user ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, external_id, email, display_name, is_admin, locale, created_at, last_login_at
		FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.ExternalID, &u.Email, &u.DisplayName, &u.IsAdmin, &u.Locale, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}

	return out, rows.Err()
}

// SetUserAdmin promotes or demotes a user's explicit admin flag.
func (s *Store) SetUserAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, id, isAdmin)
	if err != nil {
		return fmt.Errorf("set admin for user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

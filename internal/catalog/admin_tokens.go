package catalog

import (
	"context"
	"fmt"
)

// CheckAdminToken reports whether hashedToken matches a non-revoked row.
// It takes the already-hashed token; handlers.APIStore.AdminTokenLookup
// hashes a raw token before calling it.
func (s *Store) CheckAdminToken(ctx context.Context, hashedToken string) (bool, error) {
	var exists bool

	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM admin_tokens WHERE hashed_token = $1 AND revoked_at IS NULL
		)`, hashedToken).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin token: %w", err)
	}

	return exists, nil
}

// CreateAdminToken stores a newly minted admin token's hash and masked form.
func (s *Store) CreateAdminToken(ctx context.Context, hashedToken, maskedToken string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO admin_tokens (hashed_token, masked_token) VALUES ($1, $2)`,
		hashedToken, maskedToken)
	if err != nil {
		return fmt.Errorf("create admin token: %w", err)
	}

	return nil
}

// RevokeAdminToken marks the token identified by its hash as revoked.
func (s *Store) RevokeAdminToken(ctx context.Context, hashedToken string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE admin_tokens SET revoked_at = now() WHERE hashed_token = $1 AND revoked_at IS NULL`, hashedToken)
	if err != nil {
		return fmt.Errorf("revoke admin token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

// tokenBlacklist keeps revoked refresh tokens in the revoked_tokens table. It is
// used when no Redis is configured.
type tokenBlacklist struct {
	BaseRepository
}

func NewTokenBlacklist(base BaseRepository) repository.TokenBlacklist {
	return &tokenBlacklist{base}
}

func (r *tokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	query := `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, jti, time.Now().Add(ttl).UTC())
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrAlreadyRevoked
	}
	return nil
}

func (r *tokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1 AND expires_at > NOW())`
	if err := r.db.GetContext(ctx, &revoked, query, jti); err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return revoked, nil
}

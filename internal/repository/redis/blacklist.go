package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

const keyPrefix = "careconnect:blacklist:"

// Blacklist stores revoked token ids with the token's remaining lifetime as TTL.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	added, err := b.client.SetNX(ctx, keyPrefix+jti, 1, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if !added {
		return repository.ErrAlreadyRevoked
	}
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}

var _ repository.TokenBlacklist = (*Blacklist)(nil)

package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

// Blacklist is a process-local token blacklist on go-cache.
type Blacklist struct {
	c *cache.Cache
}

func NewBlacklist() *Blacklist {
	return &Blacklist{c: cache.New(time.Hour, 10*time.Minute)}
}

func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := b.c.Add(jti, struct{}{}, ttl); err != nil {
		return repository.ErrAlreadyRevoked
	}
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, found := b.c.Get(jti)
	return found, nil
}

var _ repository.TokenBlacklist = (*Blacklist)(nil)

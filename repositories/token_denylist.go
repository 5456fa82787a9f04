package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenDenylist remembers revoked token ids until the tokens would have
// expired on their own.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const redisDenylistPrefix = "teamhub:revoked:"

type redisTokenDenylist struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTokenDenylist(client *redis.Client) TokenDenylist {
	return &redisTokenDenylist{client: client, now: time.Now}
}

func (d *redisTokenDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, redisDenylistPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (d *redisTokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := d.client.Get(ctx, redisDenylistPrefix+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

type memoryTokenDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenDenylist is used when Redis is not configured. Revocations
// are lost on restart and are not shared between instances.
func NewMemoryTokenDenylist() TokenDenylist {
	return &memoryTokenDenylist{revoked: make(map[string]time.Time), now: time.Now}
}

func (d *memoryTokenDenylist) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for id, exp := range d.revoked {
		if !exp.After(now) {
			delete(d.revoked, id)
		}
	}
	if expiresAt.After(now) {
		d.revoked[tokenID] = expiresAt
	}
	return nil
}

func (d *memoryTokenDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return exp.After(d.now()), nil
}

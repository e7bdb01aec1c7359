// Package cache implements the access-token denylist on Redis. Access tokens
// are self-verifying, so rejecting one before its natural expiry needs an
// explicit mark; entries carry a TTL equal to the token's remaining lifetime
// so the denylist never outgrows the set of tokens that still matter.
package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fintrack/backend/internal/config"
)

type Revocations struct {
	rc *redis.Client
}

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rc, nil
}

func NewRevocations(rc *redis.Client) *Revocations {
	return &Revocations{rc: rc}
}

// Revoke marks token as rejected for ttl. A non-positive ttl means the token
// has already expired on its own and nothing needs to be stored.
func (r *Revocations) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rc.Set(ctx, token, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set revocation entry: %w", err)
	}
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.rc.Exists(ctx, token).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation entry: %w", err)
	}
	return n > 0, nil
}

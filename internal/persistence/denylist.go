package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistPrefix = "auth:denylist:"

// TokenDenylist stores revoked token ids in Redis until their natural expiry.
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist wraps the shared Redis connection.
func NewTokenDenylist(r *Redis) *TokenDenylist {
	if r == nil {
		return &TokenDenylist{}
	}
	return &TokenDenylist{client: r.Client}
}

// Revoke records the jti with a TTL matching the token's remaining lifetime.
func (d *TokenDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	if d == nil || d.client == nil {
		return errors.New("denylist not configured")
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		// Already expired, nothing to deny.
		return nil
	}
	return d.client.Set(ctx, denylistPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the jti has been revoked.
func (d *TokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.client == nil {
		return false, nil
	}
	n, err := d.client.Exists(ctx, denylistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

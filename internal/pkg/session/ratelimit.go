// internal/pkg/session/ratelimit.go
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 15 * time.Minute
)

// RateLimiter throttles login attempts per ip+identifier pair.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt increments the attempt counter and reports whether the
// attempt is allowed plus the remaining attempts.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, identifier string) (bool, int64, error) {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, identifier)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login counter: %w", err)
	}

	if count == 1 {
		r.client.Expire(ctx, key, loginWindow)
	}

	remaining := int64(maxLoginAttempts) - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= maxLoginAttempts, remaining, nil
}

// ResetLoginAttempts clears the counter after a successful login.
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, identifier string) error {
	key := fmt.Sprintf("ratelimit:login:%s:%s", ip, identifier)
	return r.client.Del(ctx, key).Err()
}

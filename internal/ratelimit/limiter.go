// Package ratelimit enforces a per-user submission budget shared across
// every judge-api replica, backed by Redis so the limit holds cluster-wide
// rather than per-process.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// Limiter caps how often a given key (typically a user ID) may run a
// submission. A nil *Limiter always allows, so the feature is optional.
type Limiter struct {
	rate    redis_rate.Limit
	limiter *redis_rate.Limiter
	client  *redis.Client
}

// New connects to redisURL and returns a Limiter enforcing perMinute
// requests per key. An empty redisURL disables rate limiting entirely.
func New(redisURL string, perMinute int) (*Limiter, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	return &Limiter{
		rate:    redis_rate.PerMinute(perMinute),
		limiter: redis_rate.NewLimiter(client),
		client:  client,
	}, nil
}

// Allow reports whether key may proceed now, and if not, how long the
// caller should wait before retrying.
func (l *Limiter) Allow(ctx context.Context, key string) (allowed bool, retryAfterSeconds float64, err error) {
	if l == nil {
		return true, 0, nil
	}

	res, err := l.limiter.Allow(ctx, key, l.rate)
	if err != nil {
		return false, 0, fmt.Errorf("check rate limit: %w", err)
	}

	return res.Allowed > 0, res.RetryAfter.Seconds(), nil
}

// Close releases the underlying Redis connection, a no-op when rate
// limiting is disabled.
func (l *Limiter) Close() error {
	if l == nil {
		return nil
	}
	return l.client.Close()
}

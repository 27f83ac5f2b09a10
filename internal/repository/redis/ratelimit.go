package redis

import (
	"context"
	"fmt"
	"time"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter is a fixed one-minute window counter shared by every API instance
type RateLimiter struct {
	client *Client
	limit  int64
}

// NewRateLimiter allows requestsPerMinute+burst requests per key per minute
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
	}
}

// Limit returns the number of requests allowed per window
func (r *RateLimiter) Limit() int64 {
	return r.limit
}

// Allow counts a request against key.
// Returns (allowed, remaining, resetTime, error)
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, int64, time.Time, error) {
	now := time.Now()
	windowStart := now.Truncate(time.Minute)
	fullKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart.Unix())

	pipe := r.client.rdb.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, windowStart.Add(time.Minute), nil
}

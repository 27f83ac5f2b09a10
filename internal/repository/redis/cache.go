package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Rrens/opsflow/internal/domain"
)

const (
	analyticsCachePrefix = "analytics:"
	defaultAnalyticsTTL  = 5 * time.Minute
)

// AnalyticsCache stores computed form analytics
type AnalyticsCache struct {
	client *Client
	ttl    time.Duration
}

// NewAnalyticsCache creates a cache whose entries expire after ttl
func NewAnalyticsCache(client *Client, ttl time.Duration) *AnalyticsCache {
	if ttl <= 0 {
		ttl = defaultAnalyticsTTL
	}
	return &AnalyticsCache{client: client, ttl: ttl}
}

func analyticsKey(formID uuid.UUID) string {
	return analyticsCachePrefix + formID.String()
}

// Get returns cached analytics, or nil on a miss
func (c *AnalyticsCache) Get(ctx context.Context, formID uuid.UUID) (*domain.FormAnalytics, error) {
	data, err := c.client.rdb.Get(ctx, analyticsKey(formID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics cache: %w", err)
	}

	var result domain.FormAnalytics
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analytics: %w", err)
	}

	return &result, nil
}

// Set caches analytics for a form
func (c *AnalyticsCache) Set(ctx context.Context, formID uuid.UUID, result *domain.FormAnalytics) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics: %w", err)
	}

	return c.client.rdb.Set(ctx, analyticsKey(formID), data, c.ttl).Err()
}

// Invalidate removes cached analytics for a form
func (c *AnalyticsCache) Invalidate(ctx context.Context, formID uuid.UUID) error {
	return c.client.rdb.Del(ctx, analyticsKey(formID)).Err()
}

// FlushAll removes all cached analytics
func (c *AnalyticsCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := analyticsCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores dashboard series in Redis with a short TTL. Failures are
// treated as cache misses; the dashboard can always recompute from Postgres.
type ReportCache struct {
	client *redis.Client
}

// NewReportCache builds a cache over an existing Redis connection.
func NewReportCache(r *Redis) *ReportCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &ReportCache{client: r.Client}
}

// Get returns a cached series, if present and well formed.
func (c *ReportCache) Get(ctx context.Context, key string) ([]int, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var series []int
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, false
	}
	return series, true
}

// Set stores a series under key for ttl.
func (c *ReportCache) Set(ctx context.Context, key string, series []int, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(series)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, ttl).Err()
}

package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// InsightsCachePrefix is the key prefix for per-user insights results
	InsightsCachePrefix = "insights:user:"

	// InsightsCacheTTL keeps aggregations fresh enough without recomputing
	// them on every dashboard poll
	InsightsCacheTTL = 5 * time.Minute
)

// InsightsCache caches serialized insights responses per (user, endpoint,
// period). Using an interface enables testing with mocks.
type InsightsCache interface {
	// Get returns the cached JSON payload, or found=false on a miss.
	Get(ctx context.Context, userID int64, endpoint, period string) (payload []byte, found bool, err error)

	// Set stores a JSON payload with the standard TTL.
	Set(ctx context.Context, userID int64, endpoint, period string, payload []byte) error

	// InvalidateUser drops every cached insights entry for the user.
	// Called after any dream write so aggregations never serve stale rows.
	InvalidateUser(ctx context.Context, userID int64) error
}

// RedisInsightsCache implements InsightsCache on plain Redis strings.
type RedisInsightsCache struct {
	client *redis.Client
}

// NewInsightsCache creates an InsightsCache backed by Redis.
func NewInsightsCache(client *redis.Client) InsightsCache {
	return &RedisInsightsCache{client: client}
}

// insightsKey returns the Redis key for one cached aggregation.
func insightsKey(userID int64, endpoint, period string) string {
	return fmt.Sprintf("%s%d:%s:%s", InsightsCachePrefix, userID, endpoint, period)
}

func (c *RedisInsightsCache) Get(ctx context.Context, userID int64, endpoint, period string) ([]byte, bool, error) {
	key := insightsKey(userID, endpoint, period)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		log.Printf("[InsightsCache] Get: user=%d endpoint=%s period=%s MISS", userID, endpoint, period)
		return nil, false, nil
	}
	if err != nil {
		log.Printf("[InsightsCache] Get FAILED: user=%d endpoint=%s err=%v", userID, endpoint, err)
		return nil, false, fmt.Errorf("get insights cache: %w", err)
	}

	log.Printf("[InsightsCache] Get: user=%d endpoint=%s period=%s HIT", userID, endpoint, period)
	return payload, true, nil
}

func (c *RedisInsightsCache) Set(ctx context.Context, userID int64, endpoint, period string, payload []byte) error {
	key := insightsKey(userID, endpoint, period)

	if err := c.client.Set(ctx, key, payload, InsightsCacheTTL).Err(); err != nil {
		log.Printf("[InsightsCache] Set FAILED: user=%d endpoint=%s err=%v", userID, endpoint, err)
		return fmt.Errorf("set insights cache: %w", err)
	}

	log.Printf("[InsightsCache] Set OK: user=%d endpoint=%s period=%s bytes=%d", userID, endpoint, period, len(payload))
	return nil
}

// InvalidateUser scans the user's key space and deletes what it finds.
// SCAN keeps this safe on a shared Redis; the per-user prefix keeps it small.
func (c *RedisInsightsCache) InvalidateUser(ctx context.Context, userID int64) error {
	pattern := fmt.Sprintf("%s%d:*", InsightsCachePrefix, userID)
	startTime := time.Now()

	var deleted int64
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := c.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			log.Printf("[InsightsCache] InvalidateUser FAILED: user=%d key=%s err=%v", userID, iter.Val(), err)
			return fmt.Errorf("delete insights cache key: %w", err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		log.Printf("[InsightsCache] InvalidateUser FAILED: user=%d err=%v", userID, err)
		return fmt.Errorf("scan insights cache keys: %w", err)
	}

	log.Printf("[InsightsCache] InvalidateUser OK: user=%d deleted=%d duration=%v",
		userID, deleted, time.Since(startTime))
	return nil
}

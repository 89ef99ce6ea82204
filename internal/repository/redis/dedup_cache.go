package redis

import (
	"context"
	"fmt"
	"time"

	"catalog-analytics/internal/domain"
	"catalog-analytics/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// DedupCache remembers keys that were counted recently so repeat events
// can be rejected without a database round trip.
//
// A key is written only after a Counted event has committed, with a TTL
// equal to the dedup window measured from that event. Its presence
// therefore implies a ledger entry inside the window. Its absence proves
// nothing; the caller must still consult the ledger.
type DedupCache struct {
	client *redis.Client
}

// NewDedupCache creates a new Redis dedup cache
func NewDedupCache(client *redis.Client) *DedupCache {
	return &DedupCache{client: client}
}

func cacheKey(key domain.EventKey) string {
	return "dedup:" + key.String()
}

// Seen reports whether key was counted within its window
func (c *DedupCache) Seen(ctx context.Context, key domain.EventKey) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
	}()

	n, err := c.client.Exists(ctx, cacheKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists error: %w", err)
	}

	if n > 0 {
		metrics.RecordCacheHit()
		return true, nil
	}
	metrics.RecordCacheMiss()
	return false, nil
}

// MarkCounted stores key for ttl, measured from the counted event
func (c *DedupCache) MarkCounted(ctx context.Context, key domain.EventKey, ttl time.Duration) error {
	start := time.Now()
	defer func() {
		metrics.CacheOperationDuration.WithLabelValues("set").Observe(time.Since(start).Seconds())
	}()

	if err := c.client.Set(ctx, cacheKey(key), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

// InitRedis creates a new Redis client
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

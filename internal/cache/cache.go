// Package cache provides a small Redis-backed JSON cache for generated
// recommendation lists and stats. A cache failure is never an error the
// caller sees; the pipeline just recomputes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a redis client with a key namespace and default TTL.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a cache. A nil client disables caching entirely; every Get
// misses and every Set is a no-op.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func recsKey(accountID, platform string) string {
	return fmt.Sprintf("adpilot:recs:%s:%s", accountID, platform)
}

func statsKey(accountID string, days int) string {
	return fmt.Sprintf("adpilot:stats:%s:%d", accountID, days)
}

// GetRecommendations loads a cached recommendation list into dest.
func (c *Cache) GetRecommendations(ctx context.Context, accountID, platform string, dest interface{}) bool {
	return c.get(ctx, recsKey(accountID, platform), dest)
}

// SetRecommendations caches a recommendation list.
func (c *Cache) SetRecommendations(ctx context.Context, accountID, platform string, v interface{}) {
	c.set(ctx, recsKey(accountID, platform), v)
}

// GetStats loads cached stats into dest.
func (c *Cache) GetStats(ctx context.Context, accountID string, days int, dest interface{}) bool {
	return c.get(ctx, statsKey(accountID, days), dest)
}

// SetStats caches a stats payload.
func (c *Cache) SetStats(ctx context.Context, accountID string, days int, v interface{}) {
	c.set(ctx, statsKey(accountID, days), v)
}

// InvalidateAccount drops every cached entry for the account. Called after
// feedback or outcome writes so stats never serve stale.
func (c *Cache) InvalidateAccount(ctx context.Context, accountID string) {
	if c.rdb == nil {
		return
	}
	patterns := []string{
		fmt.Sprintf("adpilot:recs:%s:*", accountID),
		fmt.Sprintf("adpilot:stats:%s:*", accountID),
	}
	for _, pattern := range patterns {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				log.Printf("[cache] delete %s failed: %v", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			log.Printf("[cache] scan %s failed: %v", pattern, err)
		}
	}
}

func (c *Cache) get(ctx context.Context, key string, dest interface{}) bool {
	if c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Printf("[cache] get %s failed: %v", key, err)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[cache] decode %s failed: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, v interface{}) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[cache] encode %s failed: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("[cache] set %s failed: %v", key, err)
	}
}

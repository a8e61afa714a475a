package geo

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores resolved addresses by CacheKey. Failed lookups are kept
// apart from successful ones so they can expire sooner.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, failed bool) error
}

// MemoryCache is a process-local Cache with two bounded, expiring tiers.
type MemoryCache struct {
	ok   *expirable.LRU[string, string]
	fail *expirable.LRU[string, string]
}

func NewMemoryCache(size int, ttl, failureTTL time.Duration) *MemoryCache {
	failSize := size / 10
	if failSize < 1 {
		failSize = 1
	}
	return &MemoryCache{
		ok:   expirable.NewLRU[string, string](size, nil, ttl),
		fail: expirable.NewLRU[string, string](failSize, nil, failureTTL),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	if v, ok := c.ok.Get(key); ok {
		return v, true
	}
	return c.fail.Get(key)
}

func (c *MemoryCache) Set(_ context.Context, key, value string, failed bool) error {
	if failed {
		c.fail.Add(key, value)
		return nil
	}
	c.fail.Remove(key)
	c.ok.Add(key, value)
	return nil
}

// Len returns the number of successful and failed entries held.
func (c *MemoryCache) Len() (ok, failed int) {
	return c.ok.Len(), c.fail.Len()
}

const (
	redisOKPrefix   = "geocode:ok:"
	redisFailPrefix = "geocode:fail:"
)

// RedisCache shares resolutions between processes.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	failureTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl, failureTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, failureTTL: failureTTL}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	vals, err := c.client.MGet(ctx, redisOKPrefix+key, redisFailPrefix+key).Result()
	if err != nil {
		return "", false
	}
	for _, v := range vals {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

func (c *RedisCache) Set(ctx context.Context, key, value string, failed bool) error {
	if failed {
		return c.client.Set(ctx, redisFailPrefix+key, value, c.failureTTL).Err()
	}
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, redisFailPrefix+key)
	pipe.Set(ctx, redisOKPrefix+key, value, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

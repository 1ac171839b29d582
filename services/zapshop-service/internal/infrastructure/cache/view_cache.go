package cache

import (
	"context"
	"time"

	"github.com/quangdang46/zapshop/shared/redis"
)

// RedisViewCache stores raw view results that do not depend on an account
// (shop config, merch catalog) for a short TTL.
type RedisViewCache struct {
	redis *redis.Redis
	ttl   time.Duration
}

func NewRedisViewCache(r *redis.Redis, ttl time.Duration) *RedisViewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisViewCache{redis: r, ttl: ttl}
}

func (c *RedisViewCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.redis.Get(ctx, key)
}

func (c *RedisViewCache) Set(ctx context.Context, key string, value []byte) error {
	return c.redis.SetWithExpiration(ctx, key, value, c.ttl)
}

func (c *RedisViewCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Delete(ctx, keys...)
}

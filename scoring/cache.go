package scoring

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores computed scores by key.
type Cache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, score float64) error
	Delete(ctx context.Context, keys ...string) error
}

// NopCache never stores anything, so every read recomputes.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (float64, bool, error) { return 0, false, nil }
func (NopCache) Set(context.Context, string, float64) error         { return nil }
func (NopCache) Delete(context.Context, ...string) error            { return nil }

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}

	score, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, err
	}
	return score, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, score float64) error {
	return c.rdb.Set(ctx, key, strconv.FormatFloat(score, 'f', 2, 64), c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

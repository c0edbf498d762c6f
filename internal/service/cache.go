package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prperemyshlev/autoimport/pkg/database"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache stores JSON values in Redis. A nil client or any Redis error
// behaves like a miss.
type RedisCache struct {
	redis  *database.Redis
	ttl    time.Duration
	logger *zap.Logger
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache creates a new cache backed by Redis
func NewRedisCache(redis *database.Redis, ttl time.Duration, logger *zap.Logger) *RedisCache {
	return &RedisCache{redis: redis, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	if c.redis == nil {
		return false
	}

	data, err := c.redis.Client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Warn("cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}

	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.redis.Client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if c.redis == nil {
		return
	}

	if err := c.redis.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn("cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

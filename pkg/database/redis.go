package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 2 * time.Second

var errRedisNotConfigured = errors.New("redis is not configured")

// Redis represents a Redis client
type Redis struct {
	Client *redis.Client
}

// NewRedis creates a Redis client. The returned client is usable even when
// the ping fails: go-redis reconnects lazily, and callers treat Redis as
// optional.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	r := &Redis{Client: client}

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := r.Ping(ctx); err != nil {
		return r, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return r, nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// Close closes the Redis connection
func (r *Redis) Close() error {
	if r == nil {
		return nil
	}
	return r.Client.Close()
}

// Ping checks if Redis is available
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil {
		return errRedisNotConfigured
	}
	return r.Client.Ping(ctx).Err()
}

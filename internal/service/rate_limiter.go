package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prperemyshlev/autoimport/pkg/database"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript trims the window, counts it and records the request
// in one step, so concurrent callers cannot all pass the count check.
// It returns {allowed, count, oldest score}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local oldest_score = 0
	if #oldest > 0 then
		oldest_score = tonumber(oldest[2])
	end
	return {0, count, oldest_score}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, ARGV[5])
return {1, count + 1, 0}
`)

// RateLimitResult describes the state of a key after a request
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
	now   func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis, now: time.Now}
}

// Allow records a request against key using a sliding window log.
// An error means Redis could not be consulted.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	if r.redis == nil {
		return RateLimitResult{Allowed: true, Remaining: limit}, nil
	}

	now := r.now()
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	// members must be unique or requests in the same instant collapse into one
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())

	res, err := slidingWindowScript.Run(ctx, r.redis.Client, []string{redisKey},
		now.UnixMilli(),
		now.Add(-window).UnixMilli(),
		limit,
		member,
		(window + time.Minute).Milliseconds(),
	).Int64Slice()
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if len(res) != 3 {
		return RateLimitResult{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	count := int(res[1])
	if res[0] == 1 {
		return RateLimitResult{Allowed: true, Remaining: max(limit-count, 0)}, nil
	}

	result := RateLimitResult{Allowed: false, RetryAfter: window}
	if res[2] > 0 {
		result.RetryAfter = window - now.Sub(time.UnixMilli(res[2]))
		if result.RetryAfter < time.Second {
			result.RetryAfter = time.Second
		}
	}
	return result, nil
}

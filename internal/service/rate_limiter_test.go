package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Positive(t, res.RetryAfter)

	other, err := limiter.Allow(ctx, "5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	_, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, "ip", 2, time.Minute)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err := limiter.Allow(ctx, "ip", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)

	now = now.Add(61 * time.Second)
	res, err = limiter.Allow(ctx, "ip", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestRateLimiter_CountsRequestsAtTheSameInstant(t *testing.T) {
	_, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	allowed := 0
	for i := 0; i < 10; i++ {
		res, err := limiter.Allow(ctx, "ip", 2, time.Minute)
		require.NoError(t, err)
		if res.Allowed {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
}

func TestRateLimiter_ConcurrentCallersShareTheLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	ctx := context.Background()

	var (
		allowed atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := limiter.Allow(ctx, "ip", 5, time.Minute)
			if err == nil && res.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), allowed.Load())
}

func TestRateLimiter_ReportsRedisFailure(t *testing.T) {
	mr, rdb := newTestRedis(t)
	limiter := NewRateLimiter(rdb)
	mr.Close()

	_, err := limiter.Allow(context.Background(), "ip", 2, time.Minute)
	assert.Error(t, err)
}

func TestRateLimiter_NilRedisAllows(t *testing.T) {
	limiter := NewRateLimiter(nil)

	res, err := limiter.Allow(context.Background(), "ip", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

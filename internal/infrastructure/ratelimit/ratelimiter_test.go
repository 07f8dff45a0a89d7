package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	client.FlushDB(ctx)

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})

	return client
}

func limiters(t *testing.T) map[string]func(t *testing.T) RateLimiter {
	return map[string]func(t *testing.T) RateLimiter{
		"memory": func(t *testing.T) RateLimiter { return NewMemoryRateLimiter() },
		"redis":  func(t *testing.T) RateLimiter { return NewRedisRateLimiter(setupTestRedis(t)) },
	}
}

func TestRateLimiter_PerMinute(t *testing.T) {
	for name, factory := range limiters(t) {
		t.Run(name, func(t *testing.T) {
			limiter := factory(t)
			ctx := context.Background()
			config := RateLimitConfig{RequestsPerMinute: 5}

			for i := 0; i < 5; i++ {
				allowed, err := limiter.Allow(ctx, "ip:1", config)
				require.NoError(t, err)
				assert.True(t, allowed, "request %d should be allowed", i+1)
			}

			allowed, err := limiter.Allow(ctx, "ip:1", config)
			require.NoError(t, err)
			assert.False(t, allowed, "6th request should be denied")

			allowed, err = limiter.Allow(ctx, "ip:2", config)
			require.NoError(t, err)
			assert.True(t, allowed, "other keys are not affected")
		})
	}
}

func TestRateLimiter_Reset(t *testing.T) {
	for name, factory := range limiters(t) {
		t.Run(name, func(t *testing.T) {
			limiter := factory(t)
			ctx := context.Background()
			config := RateLimitConfig{RequestsPerMinute: 1}

			allowed, err := limiter.Allow(ctx, "k", config)
			require.NoError(t, err)
			assert.True(t, allowed)
			allowed, err = limiter.Allow(ctx, "k", config)
			require.NoError(t, err)
			assert.False(t, allowed)

			require.NoError(t, limiter.Reset(ctx, "k"))
			allowed, err = limiter.Allow(ctx, "k", config)
			require.NoError(t, err)
			assert.True(t, allowed, "should be allowed after reset")
		})
	}
}

func TestRateLimiter_ZeroLimits(t *testing.T) {
	for name, factory := range limiters(t) {
		t.Run(name, func(t *testing.T) {
			limiter := factory(t)
			for i := 0; i < 20; i++ {
				allowed, err := limiter.Allow(context.Background(), "k", RateLimitConfig{})
				require.NoError(t, err)
				assert.True(t, allowed, "zero limits should allow all requests")
			}
		})
	}
}

func TestMemoryRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewMemoryRateLimiter()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	config := RateLimitConfig{RequestsPerMinute: 2}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow(ctx, "k", config)
		assert.True(t, allowed)
	}
	allowed, _ := limiter.Allow(ctx, "k", config)
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _ = limiter.Allow(ctx, "k", config)
	assert.True(t, allowed)
}

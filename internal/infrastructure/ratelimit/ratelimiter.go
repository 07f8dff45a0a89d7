// Package ratelimit limits how often a caller may hit an endpoint.
package ratelimit

import (
	"context"
	"time"
)

// RateLimitConfig sets per-window request budgets. Zero disables a window.
type RateLimitConfig struct {
	RequestsPerMinute int
	RequestsPerHour   int
}

type RateLimiter interface {
	// Allow records a request for key and reports whether it fits every
	// configured window.
	Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error)
	Reset(ctx context.Context, key string) error
}

type window struct {
	duration time.Duration
	limit    int
}

func (c RateLimitConfig) windows() []window {
	return []window{
		{time.Minute, c.RequestsPerMinute},
		{time.Hour, c.RequestsPerHour},
	}
}

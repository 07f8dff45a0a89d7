package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimiter is the single-instance RateLimiter used when Redis is
// disabled.
type MemoryRateLimiter struct {
	mu   sync.Mutex
	logs map[string][]time.Time
	now  func() time.Time
}

func NewMemoryRateLimiter() *MemoryRateLimiter {
	return &MemoryRateLimiter{
		logs: make(map[string][]time.Time),
		now:  time.Now,
	}
}

func (l *MemoryRateLimiter) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	longest := time.Duration(0)
	allowed := true
	for _, w := range config.windows() {
		if w.limit <= 0 {
			continue
		}
		if w.duration > longest {
			longest = w.duration
		}
		if countSince(l.logs[key], now.Add(-w.duration)) >= w.limit {
			allowed = false
		}
	}
	if longest == 0 {
		return true, nil
	}

	l.logs[key] = append(trimBefore(l.logs[key], now.Add(-longest)), now)
	return allowed, nil
}

func (l *MemoryRateLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.logs, key)
	return nil
}

func countSince(log []time.Time, start time.Time) int {
	n := 0
	for _, t := range log {
		if t.After(start) {
			n++
		}
	}
	return n
}

func trimBefore(log []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(log) && !log[i].After(start) {
		i++
	}
	return log[i:]
}

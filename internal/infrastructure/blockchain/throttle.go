package blockchain

import (
	"context"
	"sync"
	"time"
)

// Throttle spaces calls at least interval apart. Callers reserve the next
// free slot and wait for it, so concurrent callers queue in order.
type Throttle struct {
	mu       sync.Mutex
	next     time.Time
	interval time.Duration
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until the caller's slot or until ctx is done. A caller that
// gives up hands its slot back unless a later caller already queued behind it.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}

	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	reserved := slot.Add(t.interval)
	t.next = reserved
	t.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		t.mu.Lock()
		if t.next.Equal(reserved) {
			t.next = slot
		}
		t.mu.Unlock()
		return ctx.Err()
	}
}

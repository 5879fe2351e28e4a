package backend

import (
	"context"
	"sync"
	"time"
)

// throttle spaces store reads so a burst of wake-ups costs one query per
// interval.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func newThrottle(interval time.Duration) *throttle {
	if interval <= 0 {
		return &throttle{}
	}
	return &throttle{interval: interval}
}

// wait blocks until interval has passed since the previous call returned. It
// reports false when ctx ends first.
func (t *throttle) wait(ctx context.Context) bool {
	if t == nil || t.interval <= 0 {
		return ctx.Err() == nil
	}
	t.mu.Lock()
	delay := time.Until(t.last.Add(t.interval))
	t.mu.Unlock()
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
		}
	}
	t.mu.Lock()
	t.last = time.Now()
	t.mu.Unlock()
	return ctx.Err() == nil
}

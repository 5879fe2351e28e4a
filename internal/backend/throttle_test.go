package backend

import (
	"context"
	"testing"
	"time"
)

func TestThrottleSpacesCalls(t *testing.T) {
	th := newThrottle(30 * time.Millisecond)
	ctx := context.Background()
	start := time.Now()
	th.wait(ctx)
	th.wait(ctx)
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("expected second wait to block, elapsed %s", elapsed)
	}
}

func TestThrottleStopsOnCancel(t *testing.T) {
	th := newThrottle(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	if !th.wait(ctx) {
		t.Fatalf("expected first wait to pass")
	}
	cancel()
	start := time.Now()
	if th.wait(ctx) {
		t.Fatalf("expected cancelled wait to report false")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected cancel to cut the wait short, elapsed %s", elapsed)
	}
}

func TestZeroThrottleNeverBlocks(t *testing.T) {
	th := newThrottle(0)
	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 5; i++ {
		th.wait(ctx)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("expected no delay, elapsed %s", elapsed)
	}
	var nilThrottle *throttle
	nilThrottle.wait(ctx)
}

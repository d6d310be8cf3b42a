package notify

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeCounter struct {
	count atomic.Int64
	err   atomic.Bool
	calls atomic.Int64
}

func (f *fakeCounter) UnreadCount(context.Context) (int, error) {
	f.calls.Add(1)
	if f.err.Load() {
		return 0, errors.New("unavailable")
	}
	return int(f.count.Load()), nil
}

func TestPollerTracksServerCount(t *testing.T) {
	counter := &fakeCounter{}
	counter.count.Store(3)

	var notified atomic.Int64
	poller := NewPoller(counter, PollerConfig{Interval: 5 * time.Millisecond}, nil, func(count int) {
		notified.Store(int64(count))
	})
	poller.Start()
	defer func() {
		if err := poller.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()

	waitFor(t, func() bool { return poller.Count() == 3 })
	if notified.Load() != 3 {
		t.Fatalf("expected change callback with 3, got %d", notified.Load())
	}

	counter.count.Store(5)
	waitFor(t, func() bool { return poller.Count() == 5 })
}

func TestPollerKeepsLastCountOnError(t *testing.T) {
	counter := &fakeCounter{}
	counter.count.Store(2)

	poller := NewPoller(counter, PollerConfig{Interval: 5 * time.Millisecond}, nil, nil)
	poller.Start()
	defer poller.Shutdown(context.Background())

	waitFor(t, func() bool { return poller.Count() == 2 })

	counter.err.Store(true)
	before := counter.calls.Load()
	waitFor(t, func() bool { return counter.calls.Load() > before+1 })

	if got := poller.Count(); got != 2 {
		t.Fatalf("a failed poll must keep the last count, got %d", got)
	}
}

func TestPollerOptimisticAdjustments(t *testing.T) {
	counter := &fakeCounter{}
	counter.count.Store(2)

	poller := NewPoller(counter, PollerConfig{Interval: time.Hour}, nil, nil)
	poller.Refresh(context.Background())
	if poller.Count() != 2 {
		t.Fatalf("refresh: got %d", poller.Count())
	}

	poller.MarkRead()
	if poller.Count() != 1 {
		t.Fatalf("after MarkRead: got %d", poller.Count())
	}
	poller.Bump()
	if poller.Count() != 2 {
		t.Fatalf("after Bump: got %d", poller.Count())
	}

	poller.MarkRead()
	poller.MarkRead()
	poller.MarkRead()
	if poller.Count() != 0 {
		t.Fatalf("count must never go negative, got %d", poller.Count())
	}
}

func TestPollerShutdownStopsPolling(t *testing.T) {
	counter := &fakeCounter{}
	poller := NewPoller(counter, PollerConfig{Interval: time.Millisecond}, nil, nil)
	poller.Start()

	waitFor(t, func() bool { return counter.calls.Load() > 0 })
	if err := poller.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	settled := counter.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if counter.calls.Load() != settled {
		t.Fatal("poller kept polling after shutdown")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

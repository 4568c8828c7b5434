package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/sideline/internal/report"
)

type countingRefresher struct {
	mu      sync.Mutex
	calls   int
	forced  int
	payload report.Payload
	err     error
}

func (c *countingRefresher) Get(ctx context.Context, force bool) (report.Payload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if force {
		c.forced++
	}
	return c.payload, c.err
}

func (c *countingRefresher) snapshot() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls, c.forced
}

func TestRunFiresImmediatelyAndOnTicks(t *testing.T) {
	refresher := &countingRefresher{payload: report.Payload{OK: true}}
	var mu sync.Mutex
	delivered := 0
	s := New(refresher, 20*time.Millisecond)
	s.OnPayload = func(report.Payload) {
		mu.Lock()
		delivered++
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(70 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancellation")
	}

	calls, forced := refresher.snapshot()
	if calls < 2 {
		t.Errorf("expected an immediate run plus ticks, got %d calls", calls)
	}
	if forced != calls {
		t.Errorf("every scheduled refresh must force, calls=%d forced=%d", calls, forced)
	}
	mu.Lock()
	defer mu.Unlock()
	if delivered != calls {
		t.Errorf("payload hook fired %d times for %d refreshes", delivered, calls)
	}
}

func TestRunKeepsGoingAfterErrors(t *testing.T) {
	refresher := &countingRefresher{err: errors.New("official page unreachable")}
	s := New(refresher, 15*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	if calls, _ := refresher.snapshot(); calls < 2 {
		t.Errorf("errors must not stop the loop, got %d calls", calls)
	}
}

func TestRunSkipsPayloadHookOnFailurePayload(t *testing.T) {
	refresher := &countingRefresher{payload: report.Failure(report.StepParseLinks, "none")}
	s := New(refresher, 10*time.Millisecond)
	s.OnPayload = func(report.Payload) {
		t.Error("failure payloads must not reach the hook")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()
	s.Run(ctx)
}

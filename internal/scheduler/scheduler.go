// Package scheduler drives periodic report refreshes.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/fortuna/sideline/internal/report"
)

// Refresher serves the report, refreshing it when forced.
type Refresher interface {
	Get(ctx context.Context, force bool) (report.Payload, error)
}

// Scheduler forces a refresh immediately on start and then on every
// interval tick until its context is cancelled. Refresh errors are logged
// and the loop keeps going.
type Scheduler struct {
	Refresher Refresher
	Interval  time.Duration

	// OnPayload, when set, receives every successful payload. Used to fan
	// refreshed reports out to subscribers.
	OnPayload func(report.Payload)
}

// New builds a Scheduler with the given refresh interval.
func New(refresher Refresher, interval time.Duration) *Scheduler {
	return &Scheduler{Refresher: refresher, Interval: interval}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("Scheduler started (interval: %v)", s.Interval)
	s.tick(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	log.Printf("→ Scheduled refresh triggered")
	payload, err := s.Refresher.Get(ctx, true)
	if err != nil {
		log.Printf("  ⚠️  Scheduled refresh failed: %v", err)
		return
	}
	if !payload.OK {
		log.Printf("  ⚠️  Scheduled refresh returned failure at step %s: %s", payload.Step, payload.Error)
		return
	}
	if s.OnPayload != nil {
		s.OnPayload(payload)
	}
}

// Package cache holds the most recent successful report payload and decides
// when a request is served from memory versus triggering a refresh.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/sideline/internal/links"
	"github.com/fortuna/sideline/internal/report"
)

// DefaultTTL is how long a payload is considered fresh.
const DefaultTTL = time.Hour

// Runner executes one full report refresh.
type Runner interface {
	Run(ctx context.Context) (report.Payload, error)
}

// Prober resolves the newest published report URL without downloading it.
// The cache uses it to notice a newer report before the TTL expires.
type Prober interface {
	Latest(ctx context.Context) (string, error)
}

// Controller is the in-memory cache. A fresh payload is still probed against
// the official page: a newer publication forces a refresh early, while a
// failed probe falls back to serving the cached payload. Failed runs are
// never cached. Concurrent refreshes collapse into one.
type Controller struct {
	Runner Runner
	Prober Prober
	TTL    time.Duration
	Now    func() time.Time

	mu          sync.Mutex
	payload     *report.Payload
	lastUpdated time.Time

	// refreshMu serializes refreshes so concurrent misses run one fetch.
	refreshMu sync.Mutex
}

// New builds a Controller with the default TTL and wall clock.
func New(runner Runner, prober Prober) *Controller {
	return &Controller{
		Runner: runner,
		Prober: prober,
		TTL:    DefaultTTL,
		Now:    time.Now,
	}
}

// Get returns the current report payload, refreshing when forced, when the
// cached payload expired, or when a newer report is published.
func (c *Controller) Get(ctx context.Context, force bool) (report.Payload, error) {
	now := c.Now()

	var cached *report.Payload
	c.mu.Lock()
	if !force && c.payload != nil && now.Sub(c.lastUpdated) < c.TTL {
		snapshot := *c.payload
		cached = &snapshot
	}
	c.mu.Unlock()

	if cached != nil {
		cachedEpoch := int64(0)
		if cached.Meta != nil {
			cachedEpoch = links.Epoch(cached.Meta.PDFURL)
		}
		latest, err := c.Prober.Latest(ctx)
		if err != nil {
			log.Printf("  ⚠️  Could not verify newer report, serving cached: %v", err)
			return *cached, nil
		}
		if latest == "" || links.Epoch(latest) <= cachedEpoch {
			log.Printf("  ✓ Serving cached report")
			return *cached, nil
		}
		log.Printf("  ✓ Newer report detected (%s), refreshing", latest)
	} else if force {
		log.Printf("  ✓ Force refresh requested")
	} else {
		log.Printf("  ✓ Cache expired or empty, refreshing")
	}

	return c.refresh(ctx, now)
}

// Cached returns the cached payload without triggering a refresh.
func (c *Controller) Cached() (report.Payload, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil {
		return report.Payload{}, time.Time{}, false
	}
	return *c.payload, c.lastUpdated, true
}

// refresh runs the pipeline under the refresh lock. A refresh that lands
// while this caller waited for the lock satisfies the request directly.
func (c *Controller) refresh(ctx context.Context, decidedAt time.Time) (report.Payload, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	if c.payload != nil && c.lastUpdated.After(decidedAt) {
		snapshot := *c.payload
		c.mu.Unlock()
		return snapshot, nil
	}
	c.mu.Unlock()

	payload, err := c.Runner.Run(ctx)
	if err != nil {
		return report.Payload{}, err
	}
	if payload.OK {
		c.mu.Lock()
		c.payload = &payload
		c.lastUpdated = c.Now()
		c.mu.Unlock()
		log.Printf("  ✓ Cache updated")
	}
	return payload, nil
}

/*
scheduler.go - Automated monthly review scheduler

PURPOSE:
  Periodically runs the monthly review sweep for the configured tenants so
  missed excess gets applied without an admin pressing the button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps every configured tenant each tick
  - The sweep itself is idempotent, so overlapping schedules are harmless
  - Run summaries are persisted for audit and UI display

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 24 hours)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReviewScheduler(engine, tenants)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunReview endpoint (manual sweep)
  - hourdebt/reconcile.go: the sweep itself
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/zaiken/debt-engine/hourdebt"
)

// ReviewScheduler periodically sweeps tenants for missed excess.
type ReviewScheduler struct {
	Engine        *hourdebt.Engine
	Tenants       []string
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReviewScheduler creates a scheduler over the given tenants.
func NewReviewScheduler(engine *hourdebt.Engine, tenants []string) *ReviewScheduler {
	return &ReviewScheduler{
		Engine:        engine,
		Tenants:       tenants,
		CheckInterval: 24 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (rs *ReviewScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled || len(rs.Tenants) == 0 {
		log.Println("[Scheduler] Disabled or no tenants configured, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	log.Printf("[Scheduler] Started with check interval: %v", rs.CheckInterval)
}

// Stop stops the scheduler.
func (rs *ReviewScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (rs *ReviewScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.sweep()

	for {
		select {
		case <-rs.ticker.C:
			rs.sweep()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReviewScheduler) sweep() {
	ctx := context.Background()

	for _, tenantID := range rs.Tenants {
		summary, err := rs.Engine.MonthlyReview(ctx, tenantID)
		if err != nil {
			ReviewRunsTotal.WithLabelValues("error").Inc()
			log.Printf("[Scheduler] Review failed for tenant %s: %v", tenantID, err)
			continue
		}

		if summary.UsersFailed > 0 {
			ReviewRunsTotal.WithLabelValues("partial").Inc()
		} else {
			ReviewRunsTotal.WithLabelValues("ok").Inc()
		}
		if summary.AutoAppliedMinutes > 0 || summary.UsersWithGaps > 0 {
			log.Printf("[Scheduler] Tenant %s: applied=%dmin gap=%dmin users_with_gaps=%d",
				tenantID, summary.AutoAppliedMinutes, summary.RemainingGapMinutes, summary.UsersWithGaps)
		}
	}
}

// RunNow triggers an immediate sweep (for testing/admin).
func (rs *ReviewScheduler) RunNow() {
	rs.sweep()
}

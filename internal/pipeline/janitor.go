package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/marcus/blog-pipeline/internal/blog"
)

// staleMessage is written to jobs whose owning process died mid-run.
const staleMessage = "process terminated while running"

// Janitor periodically releases stale job ownership and optionally sweeps
// abandoned jobs. A job claimed by a process that crashed stays is_active
// forever without this; releasing it makes the run resumable.
type Janitor struct {
	cron       *cron.Cron
	store      blog.Store
	orch       *Orchestrator
	staleAfter time.Duration
	sweep      bool
}

// NewJanitor schedules maintenance on the given cron spec (six-field,
// seconds-resolution). staleAfter is the inactivity horizon past which an
// active job is considered orphaned; sweep additionally deletes abandoned
// jobs on each tick.
func NewJanitor(store blog.Store, orch *Orchestrator, schedule string, staleAfter time.Duration, sweep bool) (*Janitor, error) {
	j := &Janitor{
		cron:       cron.New(cron.WithSeconds()),
		store:      store,
		orch:       orch,
		staleAfter: staleAfter,
		sweep:      sweep,
	}
	if _, err := j.cron.AddFunc(schedule, j.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid janitor schedule %q: %w", schedule, err)
	}
	return j, nil
}

// Start begins the schedule in the background.
func (j *Janitor) Start() {
	j.cron.Start()
	log.Printf("[JANITOR] started, stale horizon %s", j.staleAfter)
}

// Stop halts the schedule, waiting for a running tick to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	log.Printf("[JANITOR] stopped")
}

// RunOnce performs a single maintenance pass.
func (j *Janitor) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.staleAfter)
	released, err := j.store.ReleaseStaleJobs(ctx, cutoff, staleMessage)
	if err != nil {
		log.Printf("[JANITOR] stale release failed: %v", err)
	} else if released > 0 {
		log.Printf("[JANITOR] released %d stale job(s)", released)
	}

	if !j.sweep {
		return
	}
	report, err := j.orch.CleanupAbandoned(ctx)
	if err != nil {
		log.Printf("[JANITOR] abandoned sweep failed: %v", err)
		return
	}
	if report.Cleaned > 0 {
		log.Printf("[JANITOR] %s", report.Message)
	}
}

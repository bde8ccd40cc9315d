// Package pipeline drives the multi-stage blog generation workflow: topic
// discovery, topic selection, and the content-planning → writing → editing →
// SEO continuation. The persisted job record is the single source of truth;
// the orchestrator's in-memory maps only track liveness within this process.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/blog-pipeline/internal/blog"
	"github.com/marcus/blog-pipeline/internal/topics"
)

// ErrJobNotFound reports an operation against a job id with no record.
var ErrJobNotFound = errors.New("job not found")

// DefaultStatusDelay is the pause after each status transition inside the
// continuation, long enough for polling clients to observe intermediate
// states. Tests run with zero.
const DefaultStatusDelay = 500 * time.Millisecond

// Decision is the CanResume classification for a job.
type Decision struct {
	CanResume    bool   `json:"can_resume"`
	Reason       string `json:"reason"`
	ActionNeeded string `json:"action_needed,omitempty"`
}

// CleanupReport summarizes one abandoned-job sweep.
type CleanupReport struct {
	Cleaned   int    `json:"cleaned_count"`
	Preserved int    `json:"preserved_count"`
	Message   string `json:"message"`
}

// Orchestrator owns the pipeline state machine. All persistent state lives
// on the job record; topicCache and active are per-process liveness caches
// and never authoritative when the record is readable.
type Orchestrator struct {
	store   blog.Store
	steps   StepFunctions
	spawner Spawner
	delay   time.Duration

	mu         sync.Mutex
	topicCache map[uuid.UUID][]topics.Topic
	active     map[uuid.UUID]Handle
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithSpawner substitutes the continuation spawner.
func WithSpawner(s Spawner) Option {
	return func(o *Orchestrator) { o.spawner = s }
}

// WithStatusDelay overrides the post-transition delay.
func WithStatusDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// New creates an orchestrator over the given store and step functions.
func New(store blog.Store, steps StepFunctions, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		steps:      steps,
		spawner:    GoSpawner{},
		delay:      DefaultStatusDelay,
		topicCache: make(map[uuid.UUID][]topics.Topic),
		active:     make(map[uuid.UUID]Handle),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start initializes the workflow bookkeeping on a freshly created job:
// all five completion flags false, started_at stamped, status pending.
// Runs no generation step. Persistence failures are logged and the job
// marked failed; they never propagate to the caller.
func (o *Orchestrator) Start(ctx context.Context, jobID uuid.UUID) *blog.Job {
	updated, err := o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		Status:         blog.StatusPtr(blog.StatusPending),
		StepCompletion: blog.NewStepCompletion(),
		StartedAt:      blog.TimePtr(time.Now().UTC()),
	})
	if err != nil {
		log.Printf("[PIPELINE] failed to initialize job %s: %v", jobID, err)
		o.markFailed(jobID, fmt.Errorf("initialization failed: %w", err))
		return nil
	}
	if updated == nil {
		log.Printf("[PIPELINE] job %s vanished during initialization", jobID)
		return nil
	}
	return updated
}

// GenerateTopics runs research and topic generation, parses the output into
// structured topics, and persists the list. Safe to call repeatedly; each
// call regenerates and overwrites. The parsed list is also cached in-process
// as a fallback for selection when the persisted copy is unreadable.
func (o *Orchestrator) GenerateTopics(ctx context.Context, jobID uuid.UUID) ([]topics.Topic, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	raw, err := o.steps.GenerateTopics(ctx)
	if err != nil {
		return nil, err
	}

	list := topics.Parse(raw)
	encoded, err := topics.Encode(list)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.topicCache[jobID] = list
	o.mu.Unlock()

	if !job.Status.CanTransitionTo(blog.StatusTopicGeneration) {
		return nil, fmt.Errorf("illegal transition %s -> %s", job.Status, blog.StatusTopicGeneration)
	}
	updated, err := o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		GeneratedTopics: &encoded,
		Status:          blog.StatusPtr(blog.StatusTopicGeneration),
		StepCompletion:  markStep(job, blog.StepTopicGeneration),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist topics: %w", err)
	}
	if updated == nil {
		return nil, ErrJobNotFound
	}
	return list, nil
}

// SelectTopic resolves a 1-based selection against the job's topic list and,
// on success, persists the choice and spawns the continuation. The persisted
// list is authoritative; the in-process cache is consulted only when the
// persisted copy is absent or fails validation. Returns false when the job,
// its topics, or the numbered entry are missing.
func (o *Orchestrator) SelectTopic(ctx context.Context, jobID uuid.UUID, number int) (bool, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	list := o.topicList(job)
	if len(list) == 0 {
		return false, nil
	}

	sel := topics.SelectByNumber(list, number)
	if sel == nil {
		return false, nil
	}

	if job.IsActive {
		log.Printf("[PIPELINE] job %s: already running, selection refused", jobID)
		return false, nil
	}
	if !job.Status.CanTransitionTo(blog.StatusContentPlanning) {
		log.Printf("[PIPELINE] job %s: cannot select topic in status %s", jobID, job.Status)
		return false, nil
	}
	// Claim the run in the same write as the selection so a concurrent
	// select or resume sees is_active before the continuation is scheduled.
	updated, err := o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		Title:         &sel.Title,
		SelectedTopic: blog.StringPtr(sel.Text()),
		Status:        blog.StatusPtr(blog.StatusContentPlanning),
		IsActive:      blog.BoolPtr(true),
	})
	if err != nil {
		return false, fmt.Errorf("failed to persist selection: %w", err)
	}
	if updated == nil {
		return false, nil
	}

	o.launch(jobID, sel)
	return true, nil
}

// topicList decodes the persisted topic list, falling back to the in-process
// cache when the persisted copy is absent, corrupt, or fails validation.
func (o *Orchestrator) topicList(job *blog.Job) []topics.Topic {
	if job.GeneratedTopics != nil {
		list, err := topics.Decode(*job.GeneratedTopics)
		if err == nil {
			return list
		}
		log.Printf("[PIPELINE] job %s: persisted topics unusable, trying cache: %v", job.ID, err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.topicCache[job.ID]
}

// Pause cancels a continuation owned by this process. Cancellation takes
// effect at the task's next suspension point; the paused status is persisted
// immediately. Returns false when the job cannot pause from its current
// status or this process does not own a run for it.
func (o *Orchestrator) Pause(ctx context.Context, jobID uuid.UUID) (bool, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil || !job.Status.CanTransitionTo(blog.StatusPaused) {
		return false, nil
	}

	o.mu.Lock()
	h, ok := o.active[jobID]
	if ok {
		delete(o.active, jobID)
	}
	o.mu.Unlock()
	if !ok {
		return false, nil
	}

	h.Cancel()

	_, err = o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		Status:   blog.StatusPtr(blog.StatusPaused),
		IsPaused: blog.BoolPtr(true),
		IsActive: blog.BoolPtr(false),
	})
	if err != nil {
		return false, fmt.Errorf("failed to persist pause: %w", err)
	}
	log.Printf("[PIPELINE] job %s paused", jobID)
	return true, nil
}

// Resume restarts the continuation for a job that stopped partway. Refused
// when the job is missing, already running, completed, still in the topic
// phase, or has no selected topic. Resuming from failed or paused increments
// retry_count; re-entering a mid-pipeline status does not.
func (o *Orchestrator) Resume(ctx context.Context, jobID uuid.UUID) (bool, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	switch {
	case job.Status == blog.StatusCompleted:
		return false, nil
	case job.Status == blog.StatusPending, job.Status == blog.StatusTopicGeneration:
		return false, nil
	case job.IsActive:
		return false, nil
	case !job.HasSelectedTopic():
		return false, nil
	}

	o.mu.Lock()
	_, running := o.active[jobID]
	o.mu.Unlock()
	if running {
		return false, nil
	}

	// Claim the run synchronously so a second resume sees is_active before
	// the continuation goroutine is even scheduled. error_message is left
	// alone; the next failure overwrites it.
	patch := blog.JobPatch{
		IsActive: blog.BoolPtr(true),
		IsPaused: blog.BoolPtr(false),
	}
	if job.Status == blog.StatusFailed || job.Status == blog.StatusPaused {
		patch.RetryCount = blog.IntPtr(job.RetryCount + 1)
	}
	if _, err := o.store.UpdateJob(ctx, jobID, patch); err != nil {
		return false, fmt.Errorf("failed to persist resume: %w", err)
	}

	sel := topics.ParseSelection(*job.SelectedTopic)
	log.Printf("[PIPELINE] job %s resuming from %s", jobID, job.Status)
	o.launch(jobID, sel)
	return true, nil
}

// IsActive reports whether a run loop currently owns the job. The persisted
// flag is authoritative; the in-process registry is consulted only when the
// record cannot be read. Completed jobs are never active.
func (o *Orchestrator) IsActive(ctx context.Context, jobID uuid.UUID) bool {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		log.Printf("[PIPELINE] job %s: falling back to in-process registry: %v", jobID, err)
		o.mu.Lock()
		defer o.mu.Unlock()
		_, ok := o.active[jobID]
		return ok
	}
	if job == nil || job.Status == blog.StatusCompleted {
		return false
	}
	return job.IsActive
}

// CanResume classifies what, if anything, is needed to move the job forward.
// Pure read, no mutation.
func (o *Orchestrator) CanResume(ctx context.Context, jobID uuid.UUID) (Decision, error) {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to load job: %w", err)
	}

	switch {
	case job == nil:
		return Decision{Reason: "Blog not found"}, nil
	case job.Status == blog.StatusCompleted:
		return Decision{Reason: "Blog already completed"}, nil
	case job.Status == blog.StatusPending:
		return Decision{Reason: "Topics not generated yet", ActionNeeded: "generate_topics"}, nil
	case job.Status == blog.StatusTopicGeneration && job.IsActive:
		return Decision{Reason: "Topics being generated", ActionNeeded: "wait_for_topics"}, nil
	case job.Status == blog.StatusTopicGeneration:
		return Decision{Reason: "No topic selected", ActionNeeded: "select_topic"}, nil
	case job.IsActive:
		return Decision{Reason: "Pipeline is already running", ActionNeeded: "wait_for_completion"}, nil
	case !job.HasSelectedTopic():
		return Decision{Reason: "No topic selected", ActionNeeded: "select_topic"}, nil
	case job.Status.MidPipeline():
		return Decision{CanResume: true, Reason: "Can resume pipeline", ActionNeeded: "resume_pipeline"}, nil
	case job.Status == blog.StatusFailed:
		return Decision{CanResume: true, Reason: "Can resume failed pipeline", ActionNeeded: "resume_pipeline"}, nil
	case job.Status == blog.StatusPaused:
		return Decision{CanResume: true, Reason: "Pipeline was paused", ActionNeeded: "resume_pipeline"}, nil
	default:
		return Decision{Reason: "Unknown status"}, nil
	}
}

// CleanupAbandoned deletes every job that never produced a topic list.
func (o *Orchestrator) CleanupAbandoned(ctx context.Context) (CleanupReport, error) {
	cleaned, preserved, err := o.store.DeleteAbandonedJobs(ctx)
	if err != nil {
		return CleanupReport{}, fmt.Errorf("cleanup failed: %w", err)
	}
	return CleanupReport{
		Cleaned:   cleaned,
		Preserved: preserved,
		Message:   fmt.Sprintf("Cleaned up %d abandoned blogs", cleaned),
	}, nil
}

// Forget drops the in-process caches for a deleted job, cancelling any run
// this process still owns.
func (o *Orchestrator) Forget(jobID uuid.UUID) {
	o.mu.Lock()
	h, ok := o.active[jobID]
	delete(o.active, jobID)
	delete(o.topicCache, jobID)
	o.mu.Unlock()
	if ok {
		h.Cancel()
	}
}

// launch spawns the continuation and registers its handle for pause.
func (o *Orchestrator) launch(jobID uuid.UUID, sel *topics.Selection) {
	h := o.spawner.Spawn("pipeline-"+jobID.String(), func(ctx context.Context) {
		o.runRemainingSteps(ctx, jobID, sel)
	})

	o.mu.Lock()
	o.active[jobID] = h
	o.mu.Unlock()

	go func() {
		<-h.Done()
		o.mu.Lock()
		if o.active[jobID] == h {
			delete(o.active, jobID)
		}
		o.mu.Unlock()
	}()
}

// runRemainingSteps is the continuation: re-assert the claim taken by the
// caller, then walk the four remaining steps in order, skipping any whose
// artifact already exists. Step errors mark the job failed and are never
// re-raised; cancellation leaves the pause bookkeeping to Pause.
func (o *Orchestrator) runRemainingSteps(ctx context.Context, jobID uuid.UUID, sel *topics.Selection) {
	job, err := o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		IsActive: blog.BoolPtr(true),
		IsPaused: blog.BoolPtr(false),
	})
	if err != nil || job == nil {
		log.Printf("[PIPELINE] job %s: failed to claim run: %v", jobID, err)
		return
	}

	for _, step := range continuationSteps() {
		if ctx.Err() != nil {
			log.Printf("[PIPELINE] job %s: cancelled before %s", jobID, step.Name)
			return
		}

		if step.IsComplete(job) {
			job, err = o.transition(ctx, job, step.Next, blog.JobPatch{
				StepCompletion: markStep(job, step.Name),
			})
			if err != nil {
				o.markFailed(jobID, err)
				return
			}
			log.Printf("[PIPELINE] job %s: %s already complete, skipping", jobID, step.Name)
			continue
		}

		job, err = o.transition(ctx, job, step.Status, blog.JobPatch{})
		if err != nil {
			o.markFailed(jobID, err)
			return
		}
		if !o.sleep(ctx) {
			return
		}

		artifact, err := step.Run(ctx, o.steps, job, sel)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[PIPELINE] job %s: cancelled during %s", jobID, step.Name)
				return
			}
			o.markFailed(jobID, fmt.Errorf("%s failed: %w", step.Name, err))
			return
		}

		patch := blog.JobPatch{StepCompletion: markStep(job, step.Name)}
		step.Assign(&patch, artifact)
		job, err = o.transition(ctx, job, step.Next, patch)
		if err != nil {
			o.markFailed(jobID, err)
			return
		}
		log.Printf("[PIPELINE] job %s: %s complete", jobID, step.Name)
		if !o.sleep(ctx) {
			return
		}
	}

	log.Printf("[PIPELINE] job %s completed", jobID)
}

// transition validates and persists a status change alongside extra patch
// fields. Illegal transitions are errors, never silent writes. Reaching
// completed releases ownership in the same write; a completed record is
// never persisted with is_active set.
func (o *Orchestrator) transition(ctx context.Context, job *blog.Job, next blog.Status, extra blog.JobPatch) (*blog.Job, error) {
	if !job.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("illegal transition %s -> %s", job.Status, next)
	}
	extra.Status = blog.StatusPtr(next)
	if next == blog.StatusCompleted {
		extra.IsActive = blog.BoolPtr(false)
	}
	updated, err := o.store.UpdateJob(ctx, job.ID, extra)
	if err != nil {
		return nil, fmt.Errorf("failed to persist %s: %w", next, err)
	}
	if updated == nil {
		return nil, ErrJobNotFound
	}
	return updated, nil
}

// markFailed records a pipeline-fatal error on the job and releases
// ownership. Uses a background context so a cancelled run context cannot
// block the failure write.
func (o *Orchestrator) markFailed(jobID uuid.UUID, cause error) {
	log.Printf("[PIPELINE] job %s failed: %v", jobID, cause)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := o.store.UpdateJob(ctx, jobID, blog.JobPatch{
		Status:       blog.StatusPtr(blog.StatusFailed),
		ErrorMessage: blog.StringPtr(cause.Error()),
		IsActive:     blog.BoolPtr(false),
	})
	if err != nil {
		log.Printf("[PIPELINE] job %s: failed to record failure: %v", jobID, err)
	}
}

// sleep waits out the post-transition delay, returning false when cancelled.
func (o *Orchestrator) sleep(ctx context.Context) bool {
	if o.delay <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(o.delay):
		return true
	}
}

// markStep returns a full five-key completion map with the given step set,
// carrying over the job's existing flags.
func markStep(job *blog.Job, name string) map[string]bool {
	m := blog.NewStepCompletion()
	for k, v := range job.StepCompletion {
		if _, ok := m[k]; ok {
			m[k] = v
		}
	}
	m[name] = true
	return m
}

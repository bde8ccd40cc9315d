package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used for ephemeral runs (memory://
// database URLs) and as the standard test double. Not durable: state is
// lost on process exit, so resumability only spans the process lifetime.
type MemStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
	now  func() time.Time
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		jobs: make(map[uuid.UUID]*Job),
		now:  time.Now,
	}
}

// SetClock overrides the store clock. Test hook.
func (s *MemStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateJob inserts a new pending job.
func (s *MemStore) CreateJob(ctx context.Context) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now()
	job := &Job{
		ID:             uuid.New(),
		Status:         StatusPending,
		StepCompletion: NewStepCompletion(),
		LastActivity:   ts,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	s.jobs[job.ID] = job
	return cloneJob(job), nil
}

// GetJob returns a copy of the job, or (nil, nil) when absent.
func (s *MemStore) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	return cloneJob(job), nil
}

// ListJobs returns copies of all jobs, newest first.
func (s *MemStore) ListJobs(ctx context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, cloneJob(job))
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// UpdateJob applies a patch and returns the updated copy, or (nil, nil)
// when absent.
func (s *MemStore) UpdateJob(ctx context.Context, id uuid.UUID, patch JobPatch) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}

	applyPatch(job, patch)
	ts := s.now()
	job.LastActivity = ts
	job.UpdatedAt = ts
	return cloneJob(job), nil
}

// DeleteJob removes the job.
func (s *MemStore) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false, nil
	}
	delete(s.jobs, id)
	return true, nil
}

// DeleteAbandonedJobs removes jobs without a generated topic list.
func (s *MemStore) DeleteAbandonedJobs(ctx context.Context) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleaned, preserved := 0, 0
	for id, job := range s.jobs {
		if job.HasTopics() {
			preserved++
			continue
		}
		delete(s.jobs, id)
		cleaned++
	}
	return cleaned, preserved, nil
}

// ReleaseStaleJobs fails and releases active jobs idle past the cutoff.
func (s *MemStore) ReleaseStaleJobs(ctx context.Context, cutoff time.Time, message string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	ts := s.now()
	for _, job := range s.jobs {
		if !job.IsActive || !job.LastActivity.Before(cutoff) {
			continue
		}
		job.IsActive = false
		job.Status = StatusFailed
		msg := message
		job.ErrorMessage = &msg
		job.LastActivity = ts
		job.UpdatedAt = ts
		released++
	}
	return released, nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

func applyPatch(job *Job, patch JobPatch) {
	if patch.Title != nil {
		job.Title = patch.Title
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.GeneratedTopics != nil {
		job.GeneratedTopics = patch.GeneratedTopics
	}
	if patch.SelectedTopic != nil {
		job.SelectedTopic = patch.SelectedTopic
	}
	if patch.ContentPlan != nil {
		job.ContentPlan = patch.ContentPlan
	}
	if patch.Draft != nil {
		job.Draft = patch.Draft
	}
	if patch.Edited != nil {
		job.Edited = patch.Edited
	}
	if patch.SEOOutput != nil {
		job.SEOOutput = patch.SEOOutput
	}
	if patch.StepCompletion != nil {
		m := make(map[string]bool, len(patch.StepCompletion))
		for k, v := range patch.StepCompletion {
			m[k] = v
		}
		job.StepCompletion = m
	}
	if patch.RetryCount != nil {
		job.RetryCount = *patch.RetryCount
	}
	if patch.IsPaused != nil {
		job.IsPaused = *patch.IsPaused
	}
	if patch.IsActive != nil {
		job.IsActive = *patch.IsActive
	}
	if patch.ErrorMessage != nil {
		job.ErrorMessage = patch.ErrorMessage
	}
	if patch.StartedAt != nil {
		job.StartedAt = patch.StartedAt
	}
}

func cloneJob(job *Job) *Job {
	out := *job
	if job.StepCompletion != nil {
		out.StepCompletion = make(map[string]bool, len(job.StepCompletion))
		for k, v := range job.StepCompletion {
			out.StepCompletion[k] = v
		}
	}
	return &out
}

// Package blog defines the domain model for the blog generation pipeline:
// the Job record, its status machine, step bookkeeping, progress reporting,
// and the storage port the orchestrator and server depend on.
package blog

import "fmt"

// Status is the lifecycle phase of a Job. The set is closed; writes outside
// the transition table are rejected at the orchestrator boundary.
type Status string

// Job lifecycle statuses.
const (
	StatusPending         Status = "pending"
	StatusTopicGeneration Status = "topic_generation"
	StatusContentPlanning Status = "content_planning"
	StatusWriting         Status = "writing"
	StatusEditing         Status = "editing"
	StatusSEOOptimization Status = "seo_optimization"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusPaused          Status = "paused"
)

// statusOrder is the main-path ordering used for the fallback progress
// calculation. failed and paused are off-path and have no ordinal.
var statusOrder = map[Status]int{
	StatusPending:         0,
	StatusTopicGeneration: 1,
	StatusContentPlanning: 2,
	StatusWriting:         3,
	StatusEditing:         4,
	StatusSEOOptimization: 5,
	StatusCompleted:       6,
}

// transitions lists the legal next statuses for each status. A same-status
// write is always legal (idempotent touch) and is not listed.
var transitions = map[Status][]Status{
	StatusPending:         {StatusTopicGeneration, StatusFailed},
	StatusTopicGeneration: {StatusContentPlanning, StatusFailed},
	StatusContentPlanning: {StatusWriting, StatusFailed, StatusPaused},
	StatusWriting:         {StatusEditing, StatusFailed, StatusPaused},
	StatusEditing:         {StatusSEOOptimization, StatusFailed, StatusPaused},
	StatusSEOOptimization: {StatusCompleted, StatusFailed, StatusPaused},
	StatusCompleted:       {},
	StatusFailed:          {StatusTopicGeneration, StatusContentPlanning, StatusWriting, StatusEditing, StatusSEOOptimization},
	StatusPaused:          {StatusContentPlanning, StatusWriting, StatusEditing, StatusSEOOptimization, StatusFailed},
}

// ParseStatus converts a raw string into a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return status, nil
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Ordinal returns the main-path index of s (pending=0 .. completed=6).
// ok is false for failed and paused, which sit outside the main path.
func (s Status) Ordinal() (int, bool) {
	idx, ok := statusOrder[s]
	return idx, ok
}

// Terminal reports whether no further transitions are defined for s.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// MidPipeline reports whether s is one of the four continuation-step
// statuses that a resume may re-enter directly.
func (s Status) MidPipeline() bool {
	switch s {
	case StatusContentPlanning, StatusWriting, StatusEditing, StatusSEOOptimization:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
// Same-status writes are always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

package blog

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Step names, in pipeline order. step_completion always carries all five.
const (
	StepTopicGeneration = "topic_generation"
	StepContentPlanning = "content_planning"
	StepWriting         = "writing"
	StepEditing         = "editing"
	StepSEOOptimization = "seo_optimization"
)

// StepKeys returns the five fixed step names in pipeline order.
func StepKeys() []string {
	return []string{
		StepTopicGeneration,
		StepContentPlanning,
		StepWriting,
		StepEditing,
		StepSEOOptimization,
	}
}

// NewStepCompletion returns a fresh all-false completion map with the five
// fixed keys.
func NewStepCompletion() map[string]bool {
	m := make(map[string]bool, 5)
	for _, k := range StepKeys() {
		m[k] = false
	}
	return m
}

// Job is the sole persisted entity: one row per blog generation workflow.
// Artifact fields (ContentPlan, Draft, Edited, SEOOutput) are written exactly
// once; a non-nil artifact is the authority for skipping its step on resume.
// StepCompletion is a derived signal kept consistent with artifact presence.
type Job struct {
	ID              uuid.UUID       `json:"id"`
	Title           *string         `json:"title"`
	Status          Status          `json:"status"`
	GeneratedTopics *string         `json:"generated_topics"`
	SelectedTopic   *string         `json:"selected_topic"`
	ContentPlan     *string         `json:"content_plan"`
	Draft           *string         `json:"draft"`
	Edited          *string         `json:"edited"`
	SEOOutput       *string         `json:"seo_output"`
	StepCompletion  map[string]bool `json:"step_completion"`
	RetryCount      int             `json:"retry_count"`
	IsPaused        bool            `json:"is_paused"`
	IsActive        bool            `json:"is_active"`
	ErrorMessage    *string         `json:"error_message"`
	StartedAt       *time.Time      `json:"started_at"`
	LastActivity    time.Time       `json:"last_activity"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// HasTopics reports whether a non-blank topic list has been generated.
// Jobs without one are considered abandoned by the cleanup sweep.
func (j *Job) HasTopics() bool {
	return j.GeneratedTopics != nil && strings.TrimSpace(*j.GeneratedTopics) != ""
}

// HasSelectedTopic reports whether a topic has been chosen for this job.
func (j *Job) HasSelectedTopic() bool {
	return j.SelectedTopic != nil && strings.TrimSpace(*j.SelectedTopic) != ""
}

// CompletedSteps counts the true flags in the completion map.
func (j *Job) CompletedSteps() int {
	n := 0
	for _, done := range j.StepCompletion {
		if done {
			n++
		}
	}
	return n
}

// StepTracked reports whether the completion map carries all five fixed
// keys. A map missing keys is treated as malformed by the progress reporter.
func (j *Job) StepTracked() bool {
	if j.StepCompletion == nil {
		return false
	}
	for _, k := range StepKeys() {
		if _, ok := j.StepCompletion[k]; !ok {
			return false
		}
	}
	return true
}

// JobPatch is a field-level partial update. Nil fields are left unchanged;
// the store always touches last_activity and updated_at.
type JobPatch struct {
	Title           *string
	Status          *Status
	GeneratedTopics *string
	SelectedTopic   *string
	ContentPlan     *string
	Draft           *string
	Edited          *string
	SEOOutput       *string
	StepCompletion  map[string]bool
	RetryCount      *int
	IsPaused        *bool
	IsActive        *bool
	ErrorMessage    *string
	StartedAt       *time.Time
}

// StringPtr returns a pointer to s. Convenience for building patches.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }

// StatusPtr returns a pointer to s.
func StatusPtr(s Status) *Status { return &s }

// TimePtr returns a pointer to t.
func TimePtr(t time.Time) *time.Time { return &t }

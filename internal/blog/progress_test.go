package blog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestComputeProgressFromFlags(t *testing.T) {
	tests := []struct {
		name string
		done []string
		want int
	}{
		{name: "nothing done", done: nil, want: 0},
		{name: "one step", done: []string{StepTopicGeneration}, want: 20},
		{name: "two steps", done: []string{StepTopicGeneration, StepContentPlanning}, want: 40},
		{name: "three steps", done: []string{StepTopicGeneration, StepContentPlanning, StepWriting}, want: 60},
		{name: "four steps", done: []string{StepTopicGeneration, StepContentPlanning, StepWriting, StepEditing}, want: 80},
		{name: "all five", done: StepKeys(), want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{ID: uuid.New(), Status: StatusWriting, StepCompletion: NewStepCompletion()}
			for _, step := range tt.done {
				job.StepCompletion[step] = true
			}

			p := ComputeProgress(job)
			assert.Equal(t, tt.want, p.Percentage)
			assert.Equal(t, job.ID, p.JobID)
			assert.Equal(t, StatusWriting, p.Status)
			assert.Equal(t, "Writing blog content...", p.Message)
		})
	}
}

func TestComputeProgressFallsBackToOrdinal(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		flags  map[string]bool
		want   int
	}{
		{name: "nil map pending", status: StatusPending, flags: nil, want: 0},
		{name: "nil map writing", status: StatusWriting, flags: nil, want: 50},
		{name: "nil map completed", status: StatusCompleted, flags: nil, want: 100},
		{name: "missing keys", status: StatusEditing, flags: map[string]bool{StepWriting: true}, want: 67},
		{name: "failed off the main path", status: StatusFailed, flags: nil, want: 0},
		{name: "paused off the main path", status: StatusPaused, flags: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{ID: uuid.New(), Status: tt.status, StepCompletion: tt.flags}
			assert.Equal(t, tt.want, ComputeProgress(job).Percentage)
		})
	}
}

func TestProgressMonotonicAcrossStepCompletions(t *testing.T) {
	job := &Job{ID: uuid.New(), Status: StatusContentPlanning, StepCompletion: NewStepCompletion()}

	last := ComputeProgress(job).Percentage
	for _, step := range StepKeys() {
		job.StepCompletion[step] = true
		p := ComputeProgress(job).Percentage
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
	assert.Equal(t, 100, last)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Initializing blog creation...", StatusMessage(StatusPending))
	assert.Equal(t, "Generating trending topics...", StatusMessage(StatusTopicGeneration))
	assert.Equal(t, "Creating detailed content plan...", StatusMessage(StatusContentPlanning))
	assert.Equal(t, "Blog creation completed!", StatusMessage(StatusCompleted))
	assert.Equal(t, "Blog creation failed", StatusMessage(StatusFailed))
	assert.Equal(t, "Pipeline was paused", StatusMessage(StatusPaused))
	assert.Equal(t, "Processing...", StatusMessage(Status("mystery")))
}

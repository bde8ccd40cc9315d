package blog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pending", input: "pending", want: StatusPending},
		{name: "mid pipeline", input: "writing", want: StatusWriting},
		{name: "terminal", input: "completed", want: StatusCompleted},
		{name: "unknown", input: "drafting", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "Pending", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{name: "pending to topic generation", from: StatusPending, to: StatusTopicGeneration, want: true},
		{name: "pending skips ahead", from: StatusPending, to: StatusWriting, want: false},
		{name: "selection advances", from: StatusTopicGeneration, to: StatusContentPlanning, want: true},
		{name: "planning to writing", from: StatusContentPlanning, to: StatusWriting, want: true},
		{name: "writing to editing", from: StatusWriting, to: StatusEditing, want: true},
		{name: "editing to seo", from: StatusEditing, to: StatusSEOOptimization, want: true},
		{name: "seo to completed", from: StatusSEOOptimization, to: StatusCompleted, want: true},
		{name: "writing back to planning", from: StatusWriting, to: StatusContentPlanning, want: false},
		{name: "mid pipeline can fail", from: StatusWriting, to: StatusFailed, want: true},
		{name: "mid pipeline can pause", from: StatusEditing, to: StatusPaused, want: true},
		{name: "pending cannot pause", from: StatusPending, to: StatusPaused, want: false},
		{name: "failed resumes mid pipeline", from: StatusFailed, to: StatusWriting, want: true},
		{name: "failed can regenerate topics", from: StatusFailed, to: StatusTopicGeneration, want: true},
		{name: "paused resumes mid pipeline", from: StatusPaused, to: StatusSEOOptimization, want: true},
		{name: "paused cannot complete directly", from: StatusPaused, to: StatusCompleted, want: false},
		{name: "completed is terminal", from: StatusCompleted, to: StatusWriting, want: false},
		{name: "same status touch", from: StatusWriting, to: StatusWriting, want: true},
		{name: "failed overwrite", from: StatusFailed, to: StatusFailed, want: true},
		{name: "unknown status", from: Status("bogus"), to: StatusWriting, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusOrdinal(t *testing.T) {
	idx, ok := StatusPending.Ordinal()
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = StatusCompleted.Ordinal()
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	_, ok = StatusFailed.Ordinal()
	assert.False(t, ok)

	_, ok = StatusPaused.Ordinal()
	assert.False(t, ok)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusFailed.Terminal())

	assert.True(t, StatusContentPlanning.MidPipeline())
	assert.True(t, StatusSEOOptimization.MidPipeline())
	assert.False(t, StatusPending.MidPipeline())
	assert.False(t, StatusCompleted.MidPipeline())

	assert.True(t, StatusPaused.Valid())
	assert.False(t, Status("half-done").Valid())
}

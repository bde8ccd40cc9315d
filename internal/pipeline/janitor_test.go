package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/blog-pipeline/internal/blog"
)

func TestJanitorReleasesStaleJobs(t *testing.T) {
	store := blog.NewMemStore()
	o := New(store, &fakeSteps{}, WithStatusDelay(0), WithSpawner(syncSpawner{}))

	// A job claimed 45 minutes ago by a process that died.
	past := time.Now().Add(-45 * time.Minute)
	store.SetClock(func() time.Time { return past })
	stale, err := store.CreateJob(context.Background())
	require.NoError(t, err)
	_, err = store.UpdateJob(context.Background(), stale.ID, blog.JobPatch{
		Status:          blog.StatusPtr(blog.StatusWriting),
		GeneratedTopics: blog.StringPtr("[]"),
		IsActive:        blog.BoolPtr(true),
	})
	require.NoError(t, err)

	// A freshly claimed job.
	store.SetClock(time.Now)
	fresh, err := store.CreateJob(context.Background())
	require.NoError(t, err)
	_, err = store.UpdateJob(context.Background(), fresh.ID, blog.JobPatch{
		GeneratedTopics: blog.StringPtr("[]"),
		IsActive:        blog.BoolPtr(true),
	})
	require.NoError(t, err)

	j, err := NewJanitor(store, o, "0 */10 * * * *", 30*time.Minute, false)
	require.NoError(t, err)
	j.RunOnce()

	got, err := store.GetJob(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, blog.StatusFailed, got.Status)
	assert.False(t, got.IsActive)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "process terminated while running", *got.ErrorMessage)

	got, err = store.GetJob(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestJanitorSweepsAbandonedJobsWhenEnabled(t *testing.T) {
	store := blog.NewMemStore()
	o := New(store, &fakeSteps{}, WithStatusDelay(0), WithSpawner(syncSpawner{}))

	abandoned, err := store.CreateJob(context.Background())
	require.NoError(t, err)

	j, err := NewJanitor(store, o, "0 */10 * * * *", 30*time.Minute, true)
	require.NoError(t, err)
	j.RunOnce()

	got, err := store.GetJob(context.Background(), abandoned.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "abandoned job should be swept")
}

func TestNewJanitorRejectsBadSchedule(t *testing.T) {
	store := blog.NewMemStore()
	o := New(store, &fakeSteps{})

	_, err := NewJanitor(store, o, "not a schedule", 30*time.Minute, false)
	require.Error(t, err)
}

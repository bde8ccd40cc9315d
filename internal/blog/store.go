package blog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence port for Job records. Point reads and updates
// return (nil, nil) when the job does not exist. Every update is a single
// atomic row write; the multi-write step sequences built on top of it are
// deliberately not transactional, which is why artifact presence rather
// than the completion flags is the resume authority.
type Store interface {
	// CreateJob inserts a new pending job and returns it.
	CreateJob(ctx context.Context) (*Job, error)

	// GetJob returns the job, or (nil, nil) when absent.
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)

	// ListJobs returns all jobs, newest first.
	ListJobs(ctx context.Context) ([]*Job, error)

	// UpdateJob applies a field-level patch, touches last_activity and
	// updated_at, and returns the updated job, or (nil, nil) when absent.
	UpdateJob(ctx context.Context, id uuid.UUID, patch JobPatch) (*Job, error)

	// DeleteJob removes the job and reports whether a row was deleted.
	DeleteJob(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteAbandonedJobs removes every job whose generated_topics is null
	// or blank and returns deleted and preserved counts.
	DeleteAbandonedJobs(ctx context.Context) (cleaned, preserved int, err error)

	// ReleaseStaleJobs marks active jobs with last_activity older than
	// cutoff as failed with the given message and clears their active
	// flag. Returns the number of jobs released.
	ReleaseStaleJobs(ctx context.Context, cutoff time.Time, message string) (int, error)

	// Close releases the underlying connections.
	Close() error
}

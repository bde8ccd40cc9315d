package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/marcus/blog-pipeline/internal/blog"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id               UUID PRIMARY KEY,
    title            TEXT,
    status           TEXT NOT NULL DEFAULT 'pending',
    generated_topics TEXT,
    selected_topic   TEXT,
    content_plan     TEXT,
    draft            TEXT,
    edited           TEXT,
    seo_output       TEXT,
    step_completion  TEXT,
    retry_count      INTEGER NOT NULL DEFAULT 0,
    is_paused        BOOLEAN NOT NULL DEFAULT FALSE,
    is_active        BOOLEAN NOT NULL DEFAULT FALSE,
    error_message    TEXT,
    started_at       TIMESTAMPTZ,
    last_activity    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_is_active ON jobs(is_active);
`

// PostgresStore implements blog.Store over a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects, verifies the connection, and bootstraps the schema.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// CreateJob inserts a new pending job with fresh step tracking.
func (s *PostgresStore) CreateJob(ctx context.Context) (*blog.Job, error) {
	stepJSON, err := json.Marshal(blog.NewStepCompletion())
	if err != nil {
		return nil, fmt.Errorf("failed to encode step completion: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, status, step_completion)
		 VALUES ($1, $2, $3)
		 RETURNING `+jobColumns,
		uuid.New(), string(blog.StatusPending), string(stepJSON),
	)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob returns the job, or (nil, nil) when absent.
func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*blog.Job, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns all jobs, newest first.
func (s *PostgresStore) ListJobs(ctx context.Context) ([]*blog.Job, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*blog.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateJob applies a field-level patch via COALESCE and touches
// last_activity/updated_at. Returns (nil, nil) when the job is absent.
func (s *PostgresStore) UpdateJob(ctx context.Context, id uuid.UUID, patch blog.JobPatch) (*blog.Job, error) {
	stepJSON, err := encodeStepCompletion(patch.StepCompletion)
	if err != nil {
		return nil, err
	}

	row := s.pool.QueryRow(ctx,
		`UPDATE jobs SET
		    title            = COALESCE($2, title),
		    status           = COALESCE($3, status),
		    generated_topics = COALESCE($4, generated_topics),
		    selected_topic   = COALESCE($5, selected_topic),
		    content_plan     = COALESCE($6, content_plan),
		    draft            = COALESCE($7, draft),
		    edited           = COALESCE($8, edited),
		    seo_output       = COALESCE($9, seo_output),
		    step_completion  = COALESCE($10, step_completion),
		    retry_count      = COALESCE($11, retry_count),
		    is_paused        = COALESCE($12, is_paused),
		    is_active        = COALESCE($13, is_active),
		    error_message    = COALESCE($14, error_message),
		    started_at       = COALESCE($15, started_at),
		    last_activity    = NOW(),
		    updated_at       = NOW()
		 WHERE id = $1
		 RETURNING `+jobColumns,
		id, patch.Title, statusParam(patch.Status), patch.GeneratedTopics,
		patch.SelectedTopic, patch.ContentPlan, patch.Draft, patch.Edited,
		patch.SEOOutput, stepJSON, patch.RetryCount, patch.IsPaused,
		patch.IsActive, patch.ErrorMessage, patch.StartedAt,
	)
	job, err := scanJob(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// DeleteJob removes the job and reports whether a row was deleted.
func (s *PostgresStore) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAbandonedJobs removes jobs without a generated topic list.
func (s *PostgresStore) DeleteAbandonedJobs(ctx context.Context) (int, int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM jobs
		 WHERE generated_topics IS NULL OR TRIM(generated_topics) = ''`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete abandoned jobs: %w", err)
	}

	var preserved int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&preserved); err != nil {
		return 0, 0, fmt.Errorf("failed to count preserved jobs: %w", err)
	}
	return int(tag.RowsAffected()), preserved, nil
}

// ReleaseStaleJobs fails and releases active jobs idle past the cutoff.
func (s *PostgresStore) ReleaseStaleJobs(ctx context.Context, cutoff time.Time, message string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET
		    is_active = FALSE,
		    status = $1,
		    error_message = $2,
		    last_activity = NOW(),
		    updated_at = NOW()
		 WHERE is_active = TRUE AND last_activity < $3`,
		string(blog.StatusFailed), message, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

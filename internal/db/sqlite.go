package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/marcus/blog-pipeline/internal/blog"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
    id               TEXT PRIMARY KEY,
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
    is_paused        INTEGER NOT NULL DEFAULT 0,
    is_active        INTEGER NOT NULL DEFAULT 0,
    error_message    TEXT,
    started_at       DATETIME,
    last_activity    DATETIME NOT NULL,
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_is_active ON jobs(is_active);
`

// SQLiteStore implements blog.Store over a local SQLite file. It mirrors
// the zero-configuration default of the Postgres store with ? placeholders
// and explicit timestamps.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if necessary) the database file and
// bootstraps the schema. The parent directory is created on demand.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time keeps the field-level updates serialized.
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(sqliteSchema); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: database, now: time.Now}, nil
}

// CreateJob inserts a new pending job with fresh step tracking.
func (s *SQLiteStore) CreateJob(ctx context.Context) (*blog.Job, error) {
	stepJSON, err := json.Marshal(blog.NewStepCompletion())
	if err != nil {
		return nil, fmt.Errorf("failed to encode step completion: %w", err)
	}

	id := uuid.New()
	ts := s.now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, status, step_completion, last_activity, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), string(blog.StatusPending), string(stepJSON), ts, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return s.GetJob(ctx, id)
}

// GetJob returns the job, or (nil, nil) when absent.
func (s *SQLiteStore) GetJob(ctx context.Context, id uuid.UUID) (*blog.Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id.String())
	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs returns all jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]*blog.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer func() { _ = rows.Close() }()

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
func (s *SQLiteStore) UpdateJob(ctx context.Context, id uuid.UUID, patch blog.JobPatch) (*blog.Job, error) {
	stepJSON, err := encodeStepCompletion(patch.StepCompletion)
	if err != nil {
		return nil, err
	}

	ts := s.now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET
		    title            = COALESCE(?, title),
		    status           = COALESCE(?, status),
		    generated_topics = COALESCE(?, generated_topics),
		    selected_topic   = COALESCE(?, selected_topic),
		    content_plan     = COALESCE(?, content_plan),
		    draft            = COALESCE(?, draft),
		    edited           = COALESCE(?, edited),
		    seo_output       = COALESCE(?, seo_output),
		    step_completion  = COALESCE(?, step_completion),
		    retry_count      = COALESCE(?, retry_count),
		    is_paused        = COALESCE(?, is_paused),
		    is_active        = COALESCE(?, is_active),
		    error_message    = COALESCE(?, error_message),
		    started_at       = COALESCE(?, started_at),
		    last_activity    = ?,
		    updated_at       = ?
		 WHERE id = ?`,
		patch.Title, statusParam(patch.Status), patch.GeneratedTopics,
		patch.SelectedTopic, patch.ContentPlan, patch.Draft, patch.Edited,
		patch.SEOOutput, stepJSON, patch.RetryCount, patch.IsPaused,
		patch.IsActive, patch.ErrorMessage, patch.StartedAt,
		ts, ts, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetJob(ctx, id)
}

// DeleteJob removes the job and reports whether a row was deleted.
func (s *SQLiteStore) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}
	return affected > 0, nil
}

// DeleteAbandonedJobs removes jobs without a generated topic list.
func (s *SQLiteStore) DeleteAbandonedJobs(ctx context.Context) (int, int, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs
		 WHERE generated_topics IS NULL OR TRIM(generated_topics) = ''`)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete abandoned jobs: %w", err)
	}
	cleaned, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to check delete result: %w", err)
	}

	var preserved int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&preserved); err != nil {
		return 0, 0, fmt.Errorf("failed to count preserved jobs: %w", err)
	}
	return int(cleaned), preserved, nil
}

// ReleaseStaleJobs fails and releases active jobs idle past the cutoff.
func (s *SQLiteStore) ReleaseStaleJobs(ctx context.Context, cutoff time.Time, message string) (int, error) {
	ts := s.now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET
		    is_active = 0,
		    status = ?,
		    error_message = ?,
		    last_activity = ?,
		    updated_at = ?
		 WHERE is_active = 1 AND last_activity < ?`,
		string(blog.StatusFailed), message, ts, ts, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale jobs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check release result: %w", err)
	}
	return int(affected), nil
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

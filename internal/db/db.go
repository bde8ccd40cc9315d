// Package db provides the persistent Record Store implementations behind
// the blog.Store port: PostgreSQL for deployments and SQLite for the
// zero-configuration default, selected by connection-string scheme.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marcus/blog-pipeline/internal/blog"
)

// Open dispatches on the database URL: postgres:// and postgresql:// select
// the PostgreSQL store, memory:// the in-memory store, anything else is
// treated as a SQLite file path.
func Open(ctx context.Context, databaseURL string) (blog.Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return OpenPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "memory://"):
		return blog.NewMemStore(), nil
	case databaseURL == "":
		return nil, fmt.Errorf("database URL is empty")
	default:
		return OpenSQLite(databaseURL)
	}
}

// jobColumns is the column list every scan uses, in scan order.
const jobColumns = `id, title, status, generated_topics, selected_topic,
	content_plan, draft, edited, seo_output, step_completion, retry_count,
	is_paused, is_active, error_message, started_at, last_activity,
	created_at, updated_at`

// rowScanner is satisfied by pgx.Row, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one jobs row. Nullable columns go through database/sql
// null types, which both drivers support.
func scanJob(row rowScanner) (*blog.Job, error) {
	var (
		job            blog.Job
		status         string
		title          sql.NullString
		topics         sql.NullString
		selected       sql.NullString
		plan           sql.NullString
		draft          sql.NullString
		edited         sql.NullString
		seo            sql.NullString
		stepCompletion sql.NullString
		errMsg         sql.NullString
		startedAt      sql.NullTime
	)

	err := row.Scan(&job.ID, &title, &status, &topics, &selected,
		&plan, &draft, &edited, &seo, &stepCompletion, &job.RetryCount,
		&job.IsPaused, &job.IsActive, &errMsg, &startedAt,
		&job.LastActivity, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = blog.Status(status)
	job.Title = nullableString(title)
	job.GeneratedTopics = nullableString(topics)
	job.SelectedTopic = nullableString(selected)
	job.ContentPlan = nullableString(plan)
	job.Draft = nullableString(draft)
	job.Edited = nullableString(edited)
	job.SEOOutput = nullableString(seo)
	job.ErrorMessage = nullableString(errMsg)
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}

	// A completion map that fails to decode is left nil; the progress
	// reporter treats that as malformed and falls back to the status
	// ordinal.
	if stepCompletion.Valid {
		_ = json.Unmarshal([]byte(stepCompletion.String), &job.StepCompletion)
	}

	return &job, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// encodeStepCompletion serializes a completion map for storage, or nil
// when the patch leaves the map untouched.
func encodeStepCompletion(m map[string]bool) (*string, error) {
	if m == nil {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode step completion: %w", err)
	}
	s := string(raw)
	return &s, nil
}

// statusParam converts an optional status to an optional string parameter.
func statusParam(s *blog.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

package agents

import (
	"context"
	"log"
	"time"

	"github.com/marcus/blog-pipeline/internal/llm"
)

// RetryPolicy bounds the call-level retry around one generation request.
// This is independent of the job-level retry count, which tracks pipeline
// resumptions rather than individual calls.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy is 3 attempts with a doubling backoff starting at 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 2 * time.Second}
}

// generateWithRetry runs one generation call under the policy, retrying
// only errors classified transient. Cancellation aborts immediately.
func (a *Agents) generateWithRetry(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	delay := a.retry.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= a.retry.Attempts; attempt++ {
		out, err := a.client.GenerateContent(ctx, prompt, tier)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !llm.IsTransient(err) || attempt == a.retry.Attempts {
			break
		}

		log.Printf("[AGENTS] transient generation error (attempt %d/%d), retrying in %s: %v",
			attempt, a.retry.Attempts, delay, err)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", lastErr
}

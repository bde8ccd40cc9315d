package llm

import (
	"context"
	"errors"
	"net"

	"google.golang.org/api/googleapi"
)

// IsTransient reports whether a generation error is worth retrying:
// rate limits, server-side failures, and network errors. Cancellation is
// never transient; a paused pipeline must not be retried into.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}

	var nerr net.Error
	return errors.As(err, &nerr)
}

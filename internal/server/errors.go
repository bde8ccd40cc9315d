package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/marcus/blog-pipeline/internal/blog"
	"github.com/marcus/blog-pipeline/internal/pipeline"
)

// ErrJobNotFound indicates the requested job does not exist.
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrStateConflict indicates an operation illegal in the job's current state.
type ErrStateConflict struct {
	JobID  uuid.UUID
	Status blog.Status
	Op     string
	Reason string
}

func (e *ErrStateConflict) Error() string {
	return fmt.Sprintf("cannot %s job %s in status %s: %s", e.Op, e.JobID, e.Status, e.Reason)
}

// ErrUnauthorized indicates missing or invalid credentials.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error.
func HTTPStatus(err error) int {
	if errors.Is(err, pipeline.ErrJobNotFound) {
		return http.StatusNotFound
	}
	switch err.(type) {
	case *ErrJobNotFound:
		return http.StatusNotFound
	case *ErrValidation, *ErrStateConflict:
		return http.StatusBadRequest
	case *ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

package services

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP status codes by the API layer.
var (
	// ErrNotFound means the requested incident does not exist.
	ErrNotFound = errors.New("incident not found")

	// ErrNotTriaged means the operation needs a triage result that is not
	// there yet.
	ErrNotTriaged = errors.New("incident has not been triaged")

	// ErrInvalidTransition means the incident's current status does not
	// allow the requested operation.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a bad request payload.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

package revise

import (
	"errors"
	"fmt"
)

// Common errors returned by the Revise engine.
var (
	// ErrNotFound is returned when no review state exists for a (user, item)
	// pair. Callers treat this as "first review", not a failure.
	ErrNotFound = errors.New("review state not found")

	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("store is closed")

	// ErrInvalidRating is returned when a rating falls outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidReason is returned when a recommendation carries an unknown
	// reason.
	ErrInvalidReason = errors.New("invalid recommendation reason")
)

// ValidationError is returned when input or configuration validation fails.
// The caller must correct the input before retrying.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validate: %s: %s", e.Field, e.Message)
}

// StoreError wraps a failure in the backing store. Transient errors are safe
// to retry with backoff for idempotent operations. Supports Unwrap().
type StoreError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *StoreError) Error() string {
	if e.Transient {
		return fmt.Sprintf("store: %s: transient: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable store failure.
func IsTransient(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Transient
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all layers. Callers match them with errors.Is;
// the HTTP adapter maps them onto status codes.
var (
	// ErrNotFound indicates the referenced asset, record, or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the caller does not own the referenced resource
	// or lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation indicates malformed user input (amount, date, type).
	// Raised before any persistence happens.
	ErrValidation = errors.New("validation error")

	// ErrConflict indicates two mutations raced on the same asset. It is
	// transient: the failed transaction left no writes and may be retried.
	ErrConflict = errors.New("concurrency conflict")
)

// WrapValidation returns ErrValidation annotated with a caller-facing detail.
func WrapValidation(detail string) error {
	return fmt.Errorf("%w: %s", ErrValidation, detail)
}

// Package service holds the business rules of the activity tracker: the
// schedule-overlap check, statistics, report generation and the ownership
// checks that guard every operation.  Services talk to storage through the
// small interfaces in store.go.
package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Handlers map them to HTTP status codes with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrOverlap           = errors.New("schedule overlap")
	ErrInactiveProject   = errors.New("inactive project")
	ErrImmutable         = errors.New("activity already submitted")
	ErrConflict          = errors.New("conflict")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ValidationError describes a malformed or missing input.  It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Error pairs a kind with a message meant for the API client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the text that can be shown to a client for err, or
// "" when err carries no client-safe message.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	for _, k := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrOverlap,
		ErrInactiveProject, ErrImmutable, ErrConflict, ErrUnsupportedFormat} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}

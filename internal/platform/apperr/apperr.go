// Package apperr defines the error taxonomy shared by all domain operations
// and the HTTP boundary handler that maps errors onto responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// Internal is the default for unclassified failures.
	Internal Kind = iota
	// Validation covers missing or malformed input.
	Validation
	// Unauthenticated covers missing, invalid, or expired credentials.
	Unauthenticated
	// Forbidden covers role or tenant-association failures.
	Forbidden
	// NotFound covers absent resources, including resources hidden from the
	// requesting tenant.
	NotFound
	// Conflict covers uniqueness violations: duplicate email or license,
	// a double-booked slot, a display-identifier collision.
	Conflict
	// Connection covers an unreachable store or dependent service.
	Connection
)

// Error carries a kind and a safe, user-facing message alongside the cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an error of the given kind with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The message is what callers see;
// the cause is only exposed as diagnostic detail outside production.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Status maps a kind to its HTTP status code. Conflict maps to 400 rather
// than 409: duplicate registrations and booked slots have always been
// reported as bad requests by this API and clients depend on that.
func (k Kind) Status() int {
	switch k {
	case Validation, Conflict:
		return http.StatusBadRequest
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

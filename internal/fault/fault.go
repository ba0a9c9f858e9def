// Package fault defines the engine's error taxonomy. Every failed
// operation aborts with exactly one Error; callers branch on its Kind.
package fault

import (
	"errors"
	"fmt"
)

// Kind tags an Error with its taxonomy class.
type Kind string

const (
	AlreadyExists       Kind = "already_exists"
	NotFound            Kind = "not_found"
	InvalidConfig       Kind = "invalid_config"
	Unauthorized        Kind = "unauthorized"
	WindowViolation     Kind = "window_violation"
	CapacityExceeded    Kind = "capacity_exceeded"
	IdentityMismatch    Kind = "identity_mismatch"
	AlreadyParticipated Kind = "already_participated"
	Unsupported         Kind = "unsupported"
	Internal            Kind = "internal"
)

// Error is a classified engine failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying infrastructure error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the Kind from err, or Internal if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err is a fault of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

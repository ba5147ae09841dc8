package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the HTTP boundary.
type Kind string

const (
	KindValidation  Kind = "ValidationError"
	KindNotFound    Kind = "NotFoundError"
	KindConflict    Kind = "ConflictError"
	KindPersistence Kind = "PersistenceFailure"
)

// Error is the single error type returned by repositories and services.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind, e.g. errors.Is(err, apperrors.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind-only sentinels for errors.Is.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrPersistence = &Error{Kind: KindPersistence}
)

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store error. The message is what clients see; err is kept for logs.
func Persistence(err error, message string) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf reports the kind of err. Unclassified errors count as persistence failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// Message returns the client-safe message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// Package apperr carries the typed error vocabulary shared by every mode
// engine and the orchestrator. Errors propagate to the HTTP boundary
// unchanged; only there are kinds mapped to status codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary
type Kind int

const (
	// KindInternal is anything unexpected. Logged, never detailed to callers.
	KindInternal Kind = iota
	// KindValidation is malformed or out-of-range input, rejected before any
	// state is touched.
	KindValidation
	// KindNotFound is an unknown entity (session, deck, tile, match state).
	KindNotFound
	// KindConflict is a business-rule violation: event unsupported by the
	// mode, session not active, wrong tile side, deck too small.
	KindConflict
)

// Error is the one error type the engine raises
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind returns the error's classification
func (e *Error) Kind() Kind { return e.kind }

// Message returns the caller-safe message
func (e *Error) Message() string { return e.msg }

// Validationf builds a validation error
func Validationf(format string, args ...any) error {
	return &Error{kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error
func NotFoundf(format string, args ...any) error {
	return &Error{kind: KindNotFound, msg: fmt.Sprintf(format, args...)}
}

// Conflictf builds a business-rule conflict error
func Conflictf(format string, args ...any) error {
	return &Error{kind: KindConflict, msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error with a caller-safe message
func Internal(msg string, err error) error {
	return &Error{kind: KindInternal, msg: msg, err: err}
}

// KindOf classifies any error. Unrecognized errors are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindInternal
}

// MessageOf returns the caller-safe message for any error
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.msg
	}
	return "internal error"
}

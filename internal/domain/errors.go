package domain

import "errors"

// Error categories. Every error returned by the services wraps exactly one of them.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a categorised error carrying a message meant for the API caller.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation reports malformed or out-of-contract input.
func Validation(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }

// NotFound reports a referenced entity that does not exist.
func NotFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

// Conflict reports an already synced client-local identifier.
func Conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

// Unauthorized reports a missing or invalid credential.
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Package apperr defines the error type returned by services to HTTP handlers.
//
// Every failure that reaches a client is an *Error carrying a Kind. The
// handler layer maps the Kind to a status code; anything else is treated as
// an infrastructure failure.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	KindInfrastructure Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindAuthentication
	KindDeclined
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindAuthentication:
		return "authentication"
	case KindDeclined:
		return "declined"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindInfrastructure:
		return "infrastructure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	// Code is a machine-readable code; empty means the default for Kind.
	Code string
	// Fields holds per-field messages for validation failures.
	Fields map[string][]string
	// Details is free-form context shown to the client (never the cause).
	Details string
	// Err is the underlying cause, logged but never shown.
	Err error
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

// WithCode returns a copy of e with a machine-readable code set.
func (e *Error) WithCode(code string) *Error {
	c := *e
	c.Code = code
	return &c
}

// WithDetails returns a copy of e with client-visible details set.
func (e *Error) WithDetails(details string) *Error {
	c := *e
	c.Details = details
	return &c
}

// Validation builds a validation failure. fields may be nil.
func Validation(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Authentication is a rejected credential (wrong password).
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Declined is a well-formed request the server refuses to act on, such as a
// payment confirmation whose signature does not match.
func Declined(message string) *Error {
	return &Error{Kind: KindDeclined, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message}
}

// Internal wraps an infrastructure failure. message is what the client sees.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInfrastructure, Message: message, Err: err}
}

// From returns err as an *Error, wrapping unclassified errors as
// infrastructure failures with a generic message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

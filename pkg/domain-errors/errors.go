// Package domainerrors carries classified errors from services to transports.
//
// Services return *Error values (or wrap infrastructure failures with Wrap) so
// handlers can pick an HTTP status and a stable machine-readable code without
// inspecting messages. Stores never construct these; they return sentinel
// errors from pkg/platform/sentinel which services translate.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, client-visible error classification.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeInvariantViolation Code = "invariant_violation"
	CodePaymentFailed      Code = "payment_failed"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error is a classified domain error.
type Error struct {
	Code    Code
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

// New creates a classified error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap classifies err. The cause stays reachable through errors.Is/As.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

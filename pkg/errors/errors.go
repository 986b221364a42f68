// Package errors provides structured error types for mandelscope.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes group failures by what the caller can do about them:
//   - INVALID_*: input validation failures, fix the request
//   - UNKNOWN_GRADIENT: a gradient name that the lookup does not know
//   - NUMERIC_CONVERSION: a value the numeric type cannot represent
//   - EMPTY_STACK: the viewport stack lost its root (never expected)
//   - SUPERSEDED: a computation result replaced by a newer request
//   - *_NOT_FOUND: missing resources in the HTTP layer
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnknownGradient, "unknown gradient %q", name)
//	if errors.Is(err, errors.ErrCodeUnknownGradient) {
//	    // keep the previous gradient
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNumericConversion, origErr, "convert %v", v)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidResolution Code = "INVALID_RESOLUTION"
	ErrCodeInvalidRegion     Code = "INVALID_REGION"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Domain errors
	ErrCodeUnknownGradient   Code = "UNKNOWN_GRADIENT"
	ErrCodeNumericConversion Code = "NUMERIC_CONVERSION"
	ErrCodeEmptyStack        Code = "EMPTY_STACK"
	ErrCodeSuperseded        Code = "SUPERSEDED"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInvalid reports whether err is any of the input validation codes.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidResolution, ErrCodeInvalidRegion, ErrCodeInvalidConfig:
		return true
	}
	return false
}

// Package errors provides structured error types for the noisegraph engine.
//
// Every failure the graph engine reports to a caller carries a [Code], so an
// editor UI or script runner can react to "this link would be a type mismatch"
// without matching on message text.
//
// # Error Codes
//
// Codes group into three families:
//   - UNKNOWN_*: stale or foreign identifiers
//   - structural connect failures (SAME_NODE, DIRECTION_MISMATCH, ...)
//   - INVALID_* / INTERNAL_*: input and infrastructure failures outside the engine
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTypeMismatch, "%s does not accept %s", dst, src)
//	if errors.Is(err, errors.ErrCodeTypeMismatch) {
//	    // keep the drag preview red
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScript, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Identifier resolution errors
	ErrCodeUnknownID   Code = "UNKNOWN_ID"
	ErrCodeUnknownPin  Code = "UNKNOWN_PIN"
	ErrCodeUnknownLink Code = "UNKNOWN_LINK"
	ErrCodeUnknownKind Code = "UNKNOWN_KIND"

	// Connect validation errors
	ErrCodeSameNode                    Code = "SAME_NODE"
	ErrCodeDirectionMismatch           Code = "DIRECTION_MISMATCH"
	ErrCodeTypeMismatch                Code = "TYPE_MISMATCH"
	ErrCodeDestinationAlreadyConnected Code = "DESTINATION_ALREADY_CONNECTED"
	ErrCodeIncompatibleSourceKind      Code = "INCOMPATIBLE_SOURCE_KIND"
	ErrCodeWouldCreateCycle            Code = "WOULD_CREATE_CYCLE"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidParam  Code = "INVALID_PARAM"
	ErrCodeInvalidScript Code = "INVALID_SCRIPT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"

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

// Is reports whether target is an *Error with the same code.
// This lets package-level sentinels match errors built with New or Wrap
// under the same code, so errors.Is(err, graph.ErrTypeMismatch) holds
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
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
	return GetCode(err) == code && code != ""
}

// GetCode extracts the outermost error code from an error, if available.
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

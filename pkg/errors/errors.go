// Package errors provides structured error types for the cleave partitioner.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NOT_FOUND: Resource not found
//   - INTERNAL_INVARIANT: States that must be unreachable in a correct build
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGraph, "xadj must have length %d", n+1)
//	if errors.Is(err, errors.ErrCodeInvalidGraph) {
//	    // Handle malformed graph input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "line %d", lineno)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// ErrCodeInvalidGraph covers malformed CSR input: bad offsets,
	// out-of-range adjacency entries, weight-array length mismatches,
	// self-loops, duplicate neighbor entries, and adjacency asymmetry.
	// No partial graph is ever produced when this code is returned.
	ErrCodeInvalidGraph Code = "INVALID_GRAPH"

	// ErrCodeInvalidRequest covers malformed partition requests:
	// nparts below one, nparts above the vertex count, or out-of-range
	// option values. Raised before any algorithm stage runs.
	ErrCodeInvalidRequest Code = "INVALID_PARTITION_REQUEST"

	// ErrCodeInternal marks states that must be provably unreachable:
	// an out-of-range part id after refinement, an empty part after
	// initial partitioning, or a contraction producing an invalid
	// coarse graph. Treat it as a programming-bug indicator rather
	// than a user-recoverable condition.
	ErrCodeInternal Code = "INTERNAL_INVARIANT"

	// ErrCodeInvalidFormat covers malformed graph or partition files.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// ErrCodeNotFound covers missing input files.
	ErrCodeNotFound Code = "NOT_FOUND"

	// ErrCodeUnsupported covers valid-but-unimplemented requests, such
	// as METIS format flags the reader does not handle.
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

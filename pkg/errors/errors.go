// Package errors provides coded errors for scaffoldcheck.
//
// Every failure the harness reports falls into one of three families:
// an external process that exited non-zero, a scenario assertion that did
// not hold, or a generated document that could not be parsed. The codes
// below keep those families distinguishable in tests and in CLI output.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// External process errors
	ErrCommandFailed   ErrorCode = "COMMAND_FAILED"
	ErrCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"

	// Harness stage errors
	ErrSnapshotCreate ErrorCode = "SNAPSHOT_CREATE"
	ErrMaterialize    ErrorCode = "MATERIALIZE"
	ErrManifestParse  ErrorCode = "MANIFEST_PARSE"
	ErrAssertion      ErrorCode = "ASSERTION_FAILED"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
	ErrWorkdir    ErrorCode = "WORKDIR"
)

// ScaffoldError represents a structured error with code and details
type ScaffoldError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ScaffoldError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ScaffoldError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ScaffoldError) Is(target error) bool {
	var targetErr *ScaffoldError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ScaffoldError with the given code and message
func New(code ErrorCode, message string) *ScaffoldError {
	return &ScaffoldError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ScaffoldError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ScaffoldError {
	return &ScaffoldError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ScaffoldError
func Wrap(err error, code ErrorCode, message string) *ScaffoldError {
	if err == nil {
		return nil
	}
	return &ScaffoldError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ScaffoldError {
	if err == nil {
		return nil
	}
	return &ScaffoldError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Assertionf builds an ASSERTION_FAILED error carrying the expected and
// actual values.
func Assertionf(expected, actual interface{}, format string, args ...interface{}) *ScaffoldError {
	return Newf(ErrAssertion, format, args...).
		WithDetail("expected", expected).
		WithDetail("actual", actual)
}

// WithDetail adds a detail to the error
func (e *ScaffoldError) WithDetail(key string, value interface{}) *ScaffoldError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *ScaffoldError) WithDetails(details map[string]interface{}) *ScaffoldError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// DetailString renders the details as sorted key=value pairs.
func (e *ScaffoldError) DetailString() string {
	if len(e.Details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
	}
	return strings.Join(parts, " ")
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var scaffoldErr *ScaffoldError
	if errors.As(err, &scaffoldErr) {
		return scaffoldErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ScaffoldError
func GetErrorCode(err error) ErrorCode {
	var scaffoldErr *ScaffoldError
	if errors.As(err, &scaffoldErr) {
		return scaffoldErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a ScaffoldError
func GetErrorDetails(err error) map[string]interface{} {
	var scaffoldErr *ScaffoldError
	if errors.As(err, &scaffoldErr) {
		return scaffoldErr.Details
	}
	return nil
}

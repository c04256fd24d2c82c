package domain

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes operation failures.
type ErrorCode string

const (
	// CodeBadRequest indicates a missing or blank required field.
	CodeBadRequest ErrorCode = "bad_request"

	// CodeNotFound indicates a referenced workspace, paper, note, or tag is absent.
	CodeNotFound ErrorCode = "not_found"

	// CodeConflict indicates a uniqueness violation (e.g. duplicate tag name).
	CodeConflict ErrorCode = "conflict"

	// CodeIOError indicates a file stat/open/read failure, tagged with the failing path.
	CodeIOError ErrorCode = "io_error"

	// CodeDBError indicates a storage-engine failure, wrapping its message.
	CodeDBError ErrorCode = "db_error"

	// CodeInternal indicates an unexpected or configuration failure.
	CodeInternal ErrorCode = "internal"
)

// Error is the structured error returned by every repository operation.
// Code identifies the category; Message is human-readable and safe to
// surface to the caller.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest creates a validation error.
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Message: message}
}

// NotFound creates a missing-entity error.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a uniqueness-violation error.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// IOError wraps a filesystem failure, attributing it to the failing path.
func IOError(path, action string, err error) *Error {
	return &Error{
		Code:    CodeIOError,
		Message: fmt.Sprintf("failed to %s: %s (%v)", action, path, err),
		Err:     err,
	}
}

// DBError wraps a storage-engine failure.
func DBError(err error) *Error {
	return &Error{Code: CodeDBError, Message: err.Error(), Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: err.Error(), Err: err}
}

// CodeOf extracts the error code from an error chain.
// Returns CodeInternal for errors that are not *Error.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// IsNotFound reports whether the error chain contains a not_found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsBadRequest reports whether the error chain contains a bad_request error.
func IsBadRequest(err error) bool {
	return CodeOf(err) == CodeBadRequest
}

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Stickies error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"     // 400
	ErrEmptyContent      ErrorCode = "EMPTY_CONTENT"       // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound      ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrGestureInProgress ErrorCode = "GESTURE_IN_PROGRESS" // 409
	ErrNoteTooLarge      ErrorCode = "NOTE_TOO_LARGE"      // 413
	ErrCancelled         ErrorCode = "CANCELLED"           // 499
	ErrInternal          ErrorCode = "INTERNAL"            // 500
)

// StickiesError is a structured error returned by the outer surfaces
// (CLI, web, MCP). Store operations never produce one.
type StickiesError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StickiesError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StickiesError {
	return &StickiesError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewEmptyContent creates a 400 error for blank note text.
func NewEmptyContent() *StickiesError {
	return &StickiesError{
		Code:    ErrEmptyContent,
		Status:  400,
		Message: "note content must not be empty",
	}
}

// NewNotFound creates a 404 error for when a note cannot be found.
func NewNotFound(id string) *StickiesError {
	return &StickiesError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("note not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing export/import file.
func NewFileNotFound(path string) *StickiesError {
	return &StickiesError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewGestureInProgress creates a 409 error when a swipe on the same note
// has not settled yet.
func NewGestureInProgress(id string) *StickiesError {
	return &StickiesError{
		Code:    ErrGestureInProgress,
		Status:  409,
		Message: fmt.Sprintf("a gesture is already in progress for note %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewNoteTooLarge creates a 413 error when note text exceeds the size limit.
func NewNoteTooLarge(max, actual int) *StickiesError {
	return &StickiesError{
		Code:    ErrNoteTooLarge,
		Status:  413,
		Message: fmt.Sprintf("note exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(op string) *StickiesError {
	return &StickiesError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *StickiesError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StickiesError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a StickiesError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *StickiesError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}

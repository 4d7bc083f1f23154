package errors

import "fmt"

// ErrorCode represents a ChronoTrack error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidTimeRange   ErrorCode = "INVALID_TIME_RANGE"  // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrInvariantViolation ErrorCode = "INVARIANT_VIOLATION" // 409
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE" // 500
	ErrInternal           ErrorCode = "INTERNAL"            // 500
)

// TrackError represents a structured error with code, status, and details.
type TrackError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Cause holds the underlying error for PERSISTENCE_FAILURE so retry
	// policy above the core can inspect it. Never exposed over MCP.
	Cause error
}

// Error implements the error interface.
func (e *TrackError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *TrackError) Unwrap() error {
	return e.Cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TrackError {
	return &TrackError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidTimeRange creates a 400 error for a requested start time that
// precedes the entry it would close, or a range whose end is not after its start.
func NewInvalidTimeRange(msg string, details map[string]any) *TrackError {
	return &TrackError{
		Code:    ErrInvalidTimeRange,
		Status:  400,
		Message: msg,
		Details: details,
	}
}

// NewNotFound creates a 404 error for a missing activity, entry, or comment.
func NewNotFound(kind, id string) *TrackError {
	return &TrackError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, id),
		Details: map[string]any{"kind": kind, "id": id},
	}
}

// NewInvariantViolation creates a 409 error for an operation that would leave
// the store with more than one open time entry. This is a programming error;
// the triggering operation must abort rather than repair data.
func NewInvariantViolation(msg string, details map[string]any) *TrackError {
	return &TrackError{
		Code:    ErrInvariantViolation,
		Status:  409,
		Message: msg,
		Details: details,
	}
}

// NewPersistenceFailure wraps a storage error unchanged. No local retry.
func NewPersistenceFailure(err error) *TrackError {
	msg := "storage operation failed"
	if err != nil {
		msg = err.Error()
	}
	return &TrackError{
		Code:    ErrPersistenceFailure,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TrackError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TrackError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is checks if an error is a TrackError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TrackError); ok {
		return tErr.Code == code
	}
	return false
}

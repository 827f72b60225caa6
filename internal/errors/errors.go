package errors

import (
	"fmt"
	"net/http"
)

// APIError is the single error shape returned to callers. Code identifies the
// condition machine-readably, Details carries structured context (offending
// field, blocking entity id) so the presentation layer can render a precise
// message.
type APIError struct {
	Status   int            `json:"-"`
	Code     string         `json:"code"`
	Message  string         `json:"error"`
	Details  map[string]any `json:"details,omitempty"`
	Internal error          `json:"-"`
}

// Error returns the error message
func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the original error
func (e *APIError) Unwrap() error {
	return e.Internal
}

// WithDetail returns the error with an extra detail entry attached
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New creates an APIError
func New(status int, code, message string, err error) *APIError {
	return &APIError{
		Status:   status,
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

func BadRequest(message string, err error) *APIError {
	return New(http.StatusBadRequest, "bad_request", message, err)
}

func Unauthorized(message string, err error) *APIError {
	return New(http.StatusUnauthorized, "unauthorized", message, err)
}

func Forbidden(message string, err error) *APIError {
	return New(http.StatusForbidden, "forbidden", message, err)
}

func NotFound(message string, err error) *APIError {
	return New(http.StatusNotFound, "not_found", message, err)
}

func Conflict(message string, err error) *APIError {
	return New(http.StatusConflict, "conflict", message, err)
}

func UnprocessableEntity(message string, err error) *APIError {
	return New(http.StatusUnprocessableEntity, "unprocessable_entity", message, err)
}

func Internal(err error) *APIError {
	return New(http.StatusInternalServerError, "internal", "Internal server error", err)
}

// NewValidationError wraps a binding/validation failure from the request layer
func NewValidationError(err error) *APIError {
	return New(http.StatusUnprocessableEntity, "validation_error", "Invalid input", err)
}

// Validation is a field-level validation rejection from the domain layer
func Validation(field, message string) *APIError {
	e := New(http.StatusUnprocessableEntity, "validation_error", message, nil)
	return e.WithDetail("field", field)
}

// ReactivationBlocked rejects reactivating a set superseded by a newer set
// that already has manufactured batches.
func ReactivationBlocked(blockingSetID uint64) *APIError {
	e := New(
		http.StatusConflict,
		"reactivation_blocked",
		fmt.Sprintf("Set can't be reactivated: a newer set (%d) already has batches", blockingSetID),
		nil,
	)
	return e.WithDetail("blocking_set_id", blockingSetID)
}

// InactiveSetConflict rejects adding a batch to an inactive set
func InactiveSetConflict(setID uint64) *APIError {
	e := New(
		http.StatusConflict,
		"inactive_set_conflict",
		"Batches can only be added to an active set",
		nil,
	)
	return e.WithDetail("set_id", setID)
}

// EditForbidden rejects editing a note authored by the other party
func EditForbidden(author string) *APIError {
	e := New(
		http.StatusForbidden,
		"edit_forbidden",
		"Only lab notes can be edited",
		nil,
	)
	return e.WithDetail("author", author)
}

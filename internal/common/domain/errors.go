package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for transport-level mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidState ErrorKind = "invalid_state"
	KindConflict     ErrorKind = "conflict"
	KindUnavailable  ErrorKind = "unavailable"
)

// Error is a domain-level error with a stable, client-facing code.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError creates an error for malformed or rejected input.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_error", Message: message}
}

// NewInvalidWindowError creates an error for an inverted or malformed time window.
func NewInvalidWindowError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_window", Message: message}
}

// NewNotFoundError creates an error for a missing entity.
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    "not_found",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// NewInvalidStateError creates an error for a disallowed lifecycle transition.
func NewInvalidStateError(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Code:    "invalid_state",
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

// NewStateError creates an invalid-state error with a free-form message, for
// rejections that are not a single from→to transition.
func NewStateError(message string) *Error {
	return &Error{Kind: KindInvalidState, Code: "invalid_state", Message: message}
}

// NewConflictError creates a retryable error for transactional contention.
// Callers receiving it are expected to retry the whole logical operation.
func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict_retry", Message: message}
}

// NewNoVehicleAvailableError creates an error for a window no vehicle can serve.
func NewNoVehicleAvailableError(message string) *Error {
	return &Error{Kind: KindUnavailable, Code: "no_vehicle_available", Message: message}
}

// KindOf extracts the ErrorKind from err, or "" if err is not a domain Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsConflict reports whether err is a retryable conflict.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsNotFound reports whether err is a missing-entity error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

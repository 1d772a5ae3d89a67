// Package services provides the application layer between the HTTP surface
// and the persistence and execution machinery.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNil          = errors.New("workflow cannot be nil")
	ErrWorkflowNameRequired = errors.New("workflow name is required")
	ErrInvalidMode          = errors.New("invalid workflow mode")
	ErrNodesRequired        = errors.New("workflow must have at least one node")
	ErrInvalidNodeKind      = errors.New("invalid node kind")
	ErrDuplicatePosition    = errors.New("node positions must be unique")
	ErrEmptyInput           = errors.New("test input cannot be empty")

	// Business logic conflicts (409 Conflict).
	ErrWorkflowNotActive = errors.New("workflow is not active")
	ErrWorkflowDeleted   = errors.New("workflow has been deleted")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNil) ||
		errors.Is(err, ErrWorkflowNameRequired) ||
		errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrNodesRequired) ||
		errors.Is(err, ErrInvalidNodeKind) ||
		errors.Is(err, ErrDuplicatePosition) ||
		errors.Is(err, ErrEmptyInput)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrWorkflowNotActive) ||
		errors.Is(err, ErrWorkflowDeleted)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrActiveWorkflowNotFound indicates no active workflow exists for the given mode.
	ErrActiveWorkflowNotFound = errors.New("active workflow not found")

	// ErrTraceNotFound indicates an execution trace was not found.
	ErrTraceNotFound = errors.New("execution trace not found")

	// ErrTraceAlreadyExists indicates a trace with the same execution id was already appended.
	ErrTraceAlreadyExists = errors.New("execution trace already exists")
)

// WorkflowError wraps workflow-related errors with additional context.
type WorkflowError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	WorkflowID string // Workflow ID if applicable
	Err        error  // Underlying error
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s operation failed for workflow %s: %v", e.Op, e.WorkflowID, e.Err)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for workflow errors.
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewWorkflowError creates a new workflow error with context.
func NewWorkflowError(op, workflowID string, err error) *WorkflowError {
	return &WorkflowError{
		Op:         op,
		WorkflowID: workflowID,
		Err:        err,
	}
}

// TraceError wraps trace-related errors with additional context.
type TraceError struct {
	Op          string // Operation being performed
	WorkflowID  string // Workflow ID
	ExecutionID string // Execution ID
	Err         error  // Underlying error
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("%s operation failed for trace %s of workflow %s: %v", e.Op, e.ExecutionID, e.WorkflowID, e.Err)
}

func (e *TraceError) Unwrap() error {
	return e.Err
}

func (e *TraceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTraceError creates a new trace error with context.
func NewTraceError(op, workflowID, executionID string, err error) *TraceError {
	return &TraceError{
		Op:          op,
		WorkflowID:  workflowID,
		ExecutionID: executionID,
		Err:         err,
	}
}

// IsWorkflowNotFound checks if an error indicates a workflow was not found.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsActiveWorkflowNotFound checks if an error indicates no active workflow exists for a mode.
func IsActiveWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrActiveWorkflowNotFound)
}

// IsTraceNotFound checks if an error indicates an execution trace was not found.
func IsTraceNotFound(err error) bool {
	return errors.Is(err, ErrTraceNotFound)
}

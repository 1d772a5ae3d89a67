package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/workflow"
)

// ErrTraceNotFound is returned when an execution trace is not found.
var ErrTraceNotFound = persistence.ErrTraceNotFound

const (
	defaultTraceListLimit = 20
	maxTraceListLimit     = 100
)

// Execution runs workflows and exposes their recorded traces.
type Execution struct {
	executor    *workflow.Executor
	persistence persistence.Persistence
}

// NewExecution creates a new execution service.
func NewExecution(executor *workflow.Executor, persistence persistence.Persistence) *Execution {
	return &Execution{
		executor:    executor,
		persistence: persistence,
	}
}

// ExecuteRequest describes one engine invocation.
type ExecuteRequest struct {
	TestInput  string `json:"test_input"`
	StopAtNode string `json:"stop_at_node,omitempty"`
}

// Execute runs the identified workflow and returns its trace. The trace is
// durably persisted before this returns, including failed and partial runs.
func (e *Execution) Execute(ctx context.Context, workflowID string, req ExecuteRequest) (*models.ExecutionTrace, error) {
	if strings.TrimSpace(req.TestInput) == "" {
		return nil, NewValidationError("Execute", "EMPTY_INPUT", "test_input is required", ErrEmptyInput)
	}

	return e.executor.Execute(ctx, workflowID, req.TestInput, req.StopAtNode)
}

// ExecuteActive runs the active workflow for a mode.
func (e *Execution) ExecuteActive(ctx context.Context, mode models.WorkflowMode, req ExecuteRequest) (*models.ExecutionTrace, error) {
	if strings.TrimSpace(req.TestInput) == "" {
		return nil, NewValidationError("ExecuteActive", "EMPTY_INPUT", "test_input is required", ErrEmptyInput)
	}

	if err := validateMode(mode); err != nil {
		return nil, err
	}

	return e.executor.ExecuteActive(ctx, mode, req.TestInput, req.StopAtNode)
}

// FetchTrace retrieves a single execution trace by execution ID.
func (e *Execution) FetchTrace(ctx context.Context, executionID string) (*models.ExecutionTrace, error) {
	return e.persistence.TraceRepository().GetByID(ctx, executionID)
}

// ListTraces retrieves a workflow's traces, most recent first. A non-positive
// limit selects the default page size.
func (e *Execution) ListTraces(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionTrace, error) {
	if limit <= 0 {
		limit = defaultTraceListLimit
	}

	if limit > maxTraceListLimit {
		limit = maxTraceListLimit
	}

	// The workflow must exist, even if soft-deleted: its traces stay readable.
	if _, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	traces, err := e.persistence.TraceRepository().ListByWorkflow(ctx, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list traces for workflow %q: %w", workflowID, err)
	}

	return traces, nil
}

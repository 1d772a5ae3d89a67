// Package persistence provides the data storage abstraction for workflow
// definitions and execution traces.
package persistence

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
)

// WorkflowRepository stores pipeline definitions. The engine only reads them
// during execution; mutation happens through the authoring surface.
type WorkflowRepository interface {
	List(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	GetActiveByMode(ctx context.Context, mode models.WorkflowMode) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// TraceRepository stores execution traces. Appends must be durable before
// the orchestrator returns, and concurrent appends for the same workflow must
// not corrupt each other (each trace is an independent record keyed by its
// execution id).
type TraceRepository interface {
	Append(ctx context.Context, trace *models.ExecutionTrace) error
	GetByID(ctx context.Context, executionID string) (*models.ExecutionTrace, error)
	ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionTrace, error)
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	TraceRepository() TraceRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}

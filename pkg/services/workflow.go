package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

// ErrWorkflowNotFound is returned when a workflow is not found.
var ErrWorkflowNotFound = persistence.ErrWorkflowNotFound

// Workflow is the authoring service for pipeline definitions. It owns the
// one-active-workflow-per-mode invariant: activation deactivates the previous
// holder instead of failing.
type Workflow struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
		validate:    validator.New(),
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List retrieves all workflows, most recently created first.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return workflow, nil
}

// FetchActiveByMode retrieves the active workflow for a mode.
func (w *Workflow) FetchActiveByMode(ctx context.Context, mode models.WorkflowMode) (*models.Workflow, error) {
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	return w.persistence.WorkflowRepository().GetActiveByMode(ctx, mode)
}

// Create adds a new workflow to the repository. New workflows start inactive
// at version 1; activation is a separate, explicit step.
func (w *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workflow.ID = uuid.New().String()
	workflow.Active = false
	workflow.Version = 1
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	assignNodeIDs(workflow)

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update modifies an existing workflow by its ID and bumps its version.
// Activation state is preserved; use Activate to change it.
func (w *Workflow) Update(ctx context.Context, workflowID string, workflow *models.Workflow) (*models.Workflow, error) {
	if err := w.validateWorkflow(workflow); err != nil {
		return nil, err
	}

	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing.DeletedAt != nil {
		return nil, ErrWorkflowDeleted
	}

	workflow.ID = workflowID
	workflow.Active = existing.Active
	workflow.Version = existing.Version + 1
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now().UTC()

	assignNodeIDs(workflow)

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return workflow, nil
}

// Activate makes the workflow the active one for its mode, deactivating the
// previous holder if there is one.
func (w *Workflow) Activate(ctx context.Context, workflowID string) (*models.Workflow, error) {
	repo := w.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.DeletedAt != nil {
		return nil, ErrWorkflowDeleted
	}

	if workflow.Active {
		return workflow, nil
	}

	current, err := repo.GetActiveByMode(ctx, workflow.Mode)
	if err != nil && !errors.Is(err, persistence.ErrActiveWorkflowNotFound) {
		return nil, fmt.Errorf("failed to resolve active workflow for mode %q: %w", workflow.Mode, err)
	}

	if current != nil && current.ID != workflow.ID {
		current.Active = false
		current.UpdatedAt = time.Now().UTC()

		if err := repo.Save(ctx, current); err != nil {
			return nil, fmt.Errorf("failed to deactivate workflow %q: %w", current.ID, err)
		}
	}

	workflow.Active = true
	workflow.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to activate workflow %q: %w", workflow.ID, err)
	}

	return workflow, nil
}

// Deactivate clears the workflow's active flag, leaving its mode with no
// active pipeline.
func (w *Workflow) Deactivate(ctx context.Context, workflowID string) (*models.Workflow, error) {
	repo := w.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if !workflow.Active {
		return workflow, nil
	}

	workflow.Active = false
	workflow.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to deactivate workflow %q: %w", workflow.ID, err)
	}

	return workflow, nil
}

// Delete soft-deletes a workflow by its ID. Its traces remain readable.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	if _, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return err
	}

	if err := w.persistence.WorkflowRepository().Delete(ctx, workflowID); err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	return nil
}

func (w *Workflow) validateWorkflow(workflow *models.Workflow) error {
	if workflow == nil {
		return ErrWorkflowNil
	}

	if workflow.Name == "" {
		return ErrWorkflowNameRequired
	}

	if err := validateMode(workflow.Mode); err != nil {
		return err
	}

	if len(workflow.Nodes) == 0 {
		return ErrNodesRequired
	}

	positions := make(map[int]string, len(workflow.Nodes))

	for _, node := range workflow.Nodes {
		if !validNodeKind(node.Kind) {
			return NewValidationError(
				"validateWorkflow",
				"INVALID_NODE_KIND",
				fmt.Sprintf("node %q has unknown kind %q", node.ID, node.Kind),
				ErrInvalidNodeKind,
			)
		}

		if other, taken := positions[node.Position]; taken {
			return NewValidationError(
				"validateWorkflow",
				"DUPLICATE_POSITION",
				fmt.Sprintf("nodes %q and %q share position %d", other, node.ID, node.Position),
				ErrDuplicatePosition,
			)
		}

		positions[node.Position] = node.ID
	}

	if err := w.validate.Struct(workflow); err != nil {
		return NewValidationError("validateWorkflow", "INVALID_WORKFLOW", err.Error(), ErrInvalidRequest)
	}

	return nil
}

func validateMode(mode models.WorkflowMode) error {
	for _, valid := range models.ValidModes() {
		if mode == valid {
			return nil
		}
	}

	return NewValidationError(
		"validateMode",
		"INVALID_MODE",
		fmt.Sprintf("unknown mode %q", mode),
		ErrInvalidMode,
	)
}

func validNodeKind(kind models.NodeKind) bool {
	for _, valid := range models.ValidNodeKinds() {
		if kind == valid {
			return true
		}
	}

	return false
}

func assignNodeIDs(workflow *models.Workflow) {
	for _, node := range workflow.Nodes {
		if node.ID == "" {
			node.ID = uuid.New().String()
		}
	}

	for _, connection := range workflow.Connections {
		if connection.ID == "" {
			connection.ID = uuid.New().String()
		}
	}
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/persistence/file"
)

func draftWorkflow(name string, mode models.WorkflowMode) *models.Workflow {
	return &models.Workflow{
		Name: name,
		Mode: mode,
		Nodes: []*models.WorkflowNode{
			{Kind: models.NodeKindInput, Name: "Input", Position: 1, Enabled: true},
			{Kind: models.NodeKindRouter, Name: "Router", Position: 2, Enabled: true},
			{Kind: models.NodeKindRetriever, Name: "Retriever", Position: 3, Enabled: true},
			{Kind: models.NodeKindGenerator, Name: "Generator", Position: 4, Enabled: true},
			{Kind: models.NodeKindOutput, Name: "Output", Position: 5, Enabled: true},
		},
	}
}

func newWorkflowService(t *testing.T) *Workflow {
	t.Helper()

	return NewWorkflow(file.NewPersistence(t.TempDir()))
}

func TestWorkflowService_Create(t *testing.T) {
	ctx := context.Background()
	service := newWorkflowService(t)

	created, err := service.Create(ctx, draftWorkflow("Fast Pipeline", models.WorkflowModeFast))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Active, "new workflows start inactive")
	assert.Equal(t, 1, created.Version)

	for _, node := range created.Nodes {
		assert.NotEmpty(t, node.ID, "node ids are assigned on create")
	}
}

func TestWorkflowService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	service := newWorkflowService(t)

	tests := []struct {
		name     string
		workflow *models.Workflow
		wantErr  error
	}{
		{"nil workflow", nil, ErrWorkflowNil},
		{"missing name", &models.Workflow{Mode: models.WorkflowModeFast}, ErrWorkflowNameRequired},
		{
			"bad mode",
			&models.Workflow{Name: "Pipeline", Mode: "turbo", Nodes: draftWorkflow("x", "fast").Nodes},
			ErrInvalidMode,
		},
		{"no nodes", &models.Workflow{Name: "Pipeline", Mode: models.WorkflowModeFast}, ErrNodesRequired},
		{
			"bad node kind",
			&models.Workflow{Name: "Pipeline", Mode: models.WorkflowModeFast, Nodes: []*models.WorkflowNode{
				{Kind: "transformer", Name: "T", Position: 1, Enabled: true},
			}},
			ErrInvalidNodeKind,
		},
		{
			"duplicate positions",
			&models.Workflow{Name: "Pipeline", Mode: models.WorkflowModeFast, Nodes: []*models.WorkflowNode{
				{Kind: models.NodeKindInput, Name: "A", Position: 1, Enabled: true},
				{Kind: models.NodeKindOutput, Name: "B", Position: 1, Enabled: true},
			}},
			ErrDuplicatePosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, tt.workflow)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestWorkflowService_Update_BumpsVersion(t *testing.T) {
	ctx := context.Background()
	service := newWorkflowService(t)

	created, err := service.Create(ctx, draftWorkflow("Fast Pipeline", models.WorkflowModeFast))
	require.NoError(t, err)

	created.Description = "tuned"

	updated, err := service.Update(ctx, created.ID, created)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "tuned", updated.Description)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestWorkflowService_Activate_SingleActivePerMode(t *testing.T) {
	ctx := context.Background()
	store := file.NewPersistence(t.TempDir())
	service := NewWorkflow(store)

	first, err := service.Create(ctx, draftWorkflow("First Fast", models.WorkflowModeFast))
	require.NoError(t, err)
	second, err := service.Create(ctx, draftWorkflow("Second Fast", models.WorkflowModeFast))
	require.NoError(t, err)
	thorough, err := service.Create(ctx, draftWorkflow("Thorough", models.WorkflowModeThorough))
	require.NoError(t, err)

	_, err = service.Activate(ctx, first.ID)
	require.NoError(t, err)
	_, err = service.Activate(ctx, thorough.ID)
	require.NoError(t, err)

	// Activating another workflow of the same mode displaces the holder.
	activated, err := service.Activate(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, activated.Active)

	displaced, err := service.FetchByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, displaced.Active)

	// The other mode's active workflow is untouched.
	active, err := service.FetchActiveByMode(ctx, models.WorkflowModeThorough)
	require.NoError(t, err)
	assert.Equal(t, thorough.ID, active.ID)

	active, err = service.FetchActiveByMode(ctx, models.WorkflowModeFast)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
}

func TestWorkflowService_Activate_Idempotent(t *testing.T) {
	ctx := context.Background()
	service := newWorkflowService(t)

	created, err := service.Create(ctx, draftWorkflow("Fast Pipeline", models.WorkflowModeFast))
	require.NoError(t, err)

	_, err = service.Activate(ctx, created.ID)
	require.NoError(t, err)

	again, err := service.Activate(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, again.Active)
}

func TestWorkflowService_Delete_PreservesDefinition(t *testing.T) {
	ctx := context.Background()
	service := newWorkflowService(t)

	created, err := service.Create(ctx, draftWorkflow("Fast Pipeline", models.WorkflowModeFast))
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, created.ID))

	// Soft-deleted workflows stay readable but reject updates.
	loaded, err := service.FetchByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.DeletedAt)

	_, err = service.Update(ctx, created.ID, loaded)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowDeleted)
	assert.True(t, IsConflictError(err))

	_, err = service.Activate(ctx, created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowDeleted)
}

func TestWorkflowService_Delete_NotFound(t *testing.T) {
	service := newWorkflowService(t)

	err := service.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

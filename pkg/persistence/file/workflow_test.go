package file

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

func testWorkflow(id string, mode models.WorkflowMode) *models.Workflow {
	now := time.Now().UTC()

	return &models.Workflow{
		ID:        id,
		Name:      "Workflow " + id,
		Mode:      mode,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Nodes: []*models.WorkflowNode{
			{ID: "n-input", Kind: models.NodeKindInput, Name: "Input", Position: 1, Enabled: true},
			{ID: "n-output", Kind: models.NodeKindOutput, Name: "Output", Position: 2, Enabled: true},
		},
	}
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	wf := testWorkflow("wf-1", models.WorkflowModeFast)
	require.NoError(t, repo.Save(ctx, wf))

	loaded, err := repo.GetByID(ctx, "wf-1")
	require.NoError(t, err)
	assert.Equal(t, wf.ID, loaded.ID)
	assert.Equal(t, wf.Name, loaded.Name)
	assert.Equal(t, wf.Mode, loaded.Mode)
	require.Len(t, loaded.Nodes, 2)
	assert.Equal(t, models.NodeKindInput, loaded.Nodes[0].Kind)
}

func TestWorkflowRepository_GetByID_NotFound(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_GetByID_RejectsPathTraversal(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "../escape")
	require.Error(t, err)
}

func TestWorkflowRepository_List_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	older := testWorkflow("wf-older", models.WorkflowModeFast)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, older))

	newer := testWorkflow("wf-newer", models.WorkflowModeThorough)
	require.NoError(t, repo.Save(ctx, newer))

	workflows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "wf-newer", workflows[0].ID)
	assert.Equal(t, "wf-older", workflows[1].ID)
}

func TestWorkflowRepository_GetActiveByMode(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	inactive := testWorkflow("wf-inactive", models.WorkflowModeFast)
	require.NoError(t, repo.Save(ctx, inactive))

	active := testWorkflow("wf-active", models.WorkflowModeFast)
	active.Active = true
	require.NoError(t, repo.Save(ctx, active))

	otherMode := testWorkflow("wf-code", models.WorkflowModeCode)
	otherMode.Active = true
	require.NoError(t, repo.Save(ctx, otherMode))

	found, err := repo.GetActiveByMode(ctx, models.WorkflowModeFast)
	require.NoError(t, err)
	assert.Equal(t, "wf-active", found.ID)

	_, err = repo.GetActiveByMode(ctx, models.WorkflowModeThorough)
	require.Error(t, err)
	assert.True(t, persistence.IsActiveWorkflowNotFound(err))
}

func TestWorkflowRepository_Delete_IsSoft(t *testing.T) {
	ctx := context.Background()
	repo := NewWorkflowRepository(t.TempDir())

	wf := testWorkflow("wf-del", models.WorkflowModeFast)
	wf.Active = true
	require.NoError(t, repo.Save(ctx, wf))
	require.NoError(t, repo.Delete(ctx, "wf-del"))

	// The definition survives with a deletion marker.
	loaded, err := repo.GetByID(ctx, "wf-del")
	require.NoError(t, err)
	require.NotNil(t, loaded.DeletedAt)
	assert.False(t, loaded.Active)

	// Deleted workflows no longer hold the active slot.
	_, err = repo.GetActiveByMode(ctx, models.WorkflowModeFast)
	require.Error(t, err)
}

func TestWorkflowRepository_Delete_NotFound(t *testing.T) {
	repo := NewWorkflowRepository(t.TempDir())

	err := repo.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

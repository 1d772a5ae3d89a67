package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/persistence/file"
	"github.com/raglinehq/ragline/pkg/registry"
	"github.com/raglinehq/ragline/pkg/workflow"
)

func setupExecutionService(t *testing.T) (*Execution, *Workflow) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	store := file.NewPersistence(t.TempDir())
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(nil, nil)

	executor := workflow.NewExecutor(logger, reg, store)

	return NewExecution(executor, store), NewWorkflow(store)
}

func createExecutableWorkflow(ctx context.Context, t *testing.T, workflowService *Workflow) *models.Workflow {
	t.Helper()

	created, err := workflowService.Create(ctx, draftWorkflow("Executable Workflow", models.WorkflowModeFast))
	require.NoError(t, err)

	return created
}

func TestExecutionService_Execute(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)

	trace, err := executionService.Execute(ctx, created.ID, ExecuteRequest{TestInput: "what is rag?"})
	require.NoError(t, err)

	assert.Equal(t, created.ID, trace.WorkflowID)
	assert.Equal(t, models.ExecutionStatusSuccess, trace.Status)
	assert.NotEmpty(t, trace.FinalOutput)
}

func TestExecutionService_Execute_EmptyInput(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)

	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := executionService.Execute(ctx, created.ID, ExecuteRequest{TestInput: input})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.True(t, IsValidationError(err))
	}
}

func TestExecutionService_ExecuteActive(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)
	_, err := workflowService.Activate(ctx, created.ID)
	require.NoError(t, err)

	trace, err := executionService.ExecuteActive(ctx, models.WorkflowModeFast, ExecuteRequest{TestInput: "what is rag?"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, trace.WorkflowID)

	_, err = executionService.ExecuteActive(ctx, models.WorkflowModeThorough, ExecuteRequest{TestInput: "what is rag?"})
	require.Error(t, err)
	assert.True(t, persistence.IsActiveWorkflowNotFound(err))
}

func TestExecutionService_ExecuteActive_InvalidMode(t *testing.T) {
	executionService, _ := setupExecutionService(t)

	_, err := executionService.ExecuteActive(context.Background(), "turbo", ExecuteRequest{TestInput: "what is rag?"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestExecutionService_FetchTrace(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)

	trace, err := executionService.Execute(ctx, created.ID, ExecuteRequest{TestInput: "what is rag?"})
	require.NoError(t, err)

	got, err := executionService.FetchTrace(ctx, trace.ExecutionID)
	require.NoError(t, err)
	assert.Equal(t, trace.ExecutionID, got.ExecutionID)

	_, err = executionService.FetchTrace(ctx, "exec-missing")
	require.Error(t, err)
	assert.True(t, persistence.IsTraceNotFound(err))
}

func TestExecutionService_ListTraces(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)

	for range 3 {
		_, err := executionService.Execute(ctx, created.ID, ExecuteRequest{TestInput: "what is rag?"})
		require.NoError(t, err)
	}

	traces, err := executionService.ListTraces(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, traces, 3)

	limited, err := executionService.ListTraces(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestExecutionService_ListTraces_WorkflowMustExist(t *testing.T) {
	executionService, _ := setupExecutionService(t)

	_, err := executionService.ListTraces(context.Background(), "wf-missing", 10)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestExecutionService_ListTraces_DeletedWorkflowStaysReadable(t *testing.T) {
	executionService, workflowService := setupExecutionService(t)
	ctx := context.Background()

	created := createExecutableWorkflow(ctx, t, workflowService)

	_, err := executionService.Execute(ctx, created.ID, ExecuteRequest{TestInput: "what is rag?"})
	require.NoError(t, err)

	require.NoError(t, workflowService.Delete(ctx, created.ID))

	traces, err := executionService.ListTraces(ctx, created.ID, 10)
	require.NoError(t, err)
	assert.Len(t, traces, 1)
}

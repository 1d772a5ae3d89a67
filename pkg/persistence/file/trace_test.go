package file

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

func testTrace(executionID, workflowID string, createdAt time.Time) *models.ExecutionTrace {
	return &models.ExecutionTrace{
		ExecutionID:   executionID,
		WorkflowID:    workflowID,
		TestInput:     "test input",
		ExecutionPath: []string{"n-input", "n-output"},
		NodeOutputs: []models.NodeExecutionRecord{
			{NodeID: "n-input", NodeName: "Input", NodeType: models.NodeKindInput, Input: "test input", Status: models.NodeRecordStatusSuccess},
			{NodeID: "n-output", NodeName: "Output", NodeType: models.NodeKindOutput, Status: models.NodeRecordStatusSuccess},
		},
		FinalOutput:    map[string]any{"response": "done"},
		ProcessingTime: 0.012,
		Status:         models.ExecutionStatusSuccess,
		CreatedAt:      createdAt,
	}
}

func TestTraceRepository_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTraceRepository(t.TempDir())

	trace := testTrace("exec-1", "wf-1", time.Now().UTC())
	require.NoError(t, repo.Append(ctx, trace))

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, trace.ExecutionID, loaded.ExecutionID)
	assert.Equal(t, trace.WorkflowID, loaded.WorkflowID)
	assert.Equal(t, trace.ExecutionPath, loaded.ExecutionPath)
	assert.Equal(t, trace.Status, loaded.Status)
	require.Len(t, loaded.NodeOutputs, 2)
	assert.Equal(t, models.NodeKindInput, loaded.NodeOutputs[0].NodeType)
}

func TestTraceRepository_AppendIsImmutable(t *testing.T) {
	ctx := context.Background()
	repo := NewTraceRepository(t.TempDir())

	trace := testTrace("exec-dup", "wf-1", time.Now().UTC())
	require.NoError(t, repo.Append(ctx, trace))

	err := repo.Append(ctx, trace)
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrTraceAlreadyExists)
}

func TestTraceRepository_GetByID_NotFound(t *testing.T) {
	repo := NewTraceRepository(t.TempDir())

	_, err := repo.GetByID(context.Background(), "exec-missing")
	require.Error(t, err)
	assert.True(t, persistence.IsTraceNotFound(err))
}

func TestTraceRepository_ListByWorkflow(t *testing.T) {
	ctx := context.Background()
	repo := NewTraceRepository(t.TempDir())

	base := time.Now().UTC()

	for i := range 5 {
		trace := testTrace(fmt.Sprintf("exec-%d", i), "wf-1", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, repo.Append(ctx, trace))
	}

	other := testTrace("exec-other", "wf-2", base)
	require.NoError(t, repo.Append(ctx, other))

	traces, err := repo.ListByWorkflow(ctx, "wf-1", 0)
	require.NoError(t, err)
	require.Len(t, traces, 5)

	// Most recent first.
	for i := range 4 {
		assert.True(t, traces[i].CreatedAt.After(traces[i+1].CreatedAt))
	}

	limited, err := repo.ListByWorkflow(ctx, "wf-1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "exec-4", limited[0].ExecutionID)
	assert.Equal(t, "exec-3", limited[1].ExecutionID)
}

func TestTraceRepository_ListByWorkflow_Empty(t *testing.T) {
	repo := NewTraceRepository(t.TempDir())

	traces, err := repo.ListByWorkflow(context.Background(), "wf-unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, traces)
}

func TestTraceRepository_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewTraceRepository(t.TempDir())

	const writers = 10

	var wg sync.WaitGroup

	errs := make([]error, writers)

	for i := range writers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			trace := testTrace(fmt.Sprintf("exec-c%d", i), "wf-concurrent", time.Now().UTC())
			errs[i] = repo.Append(ctx, trace)
		}()
	}

	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "writer %d", i)
	}

	traces, err := repo.ListByWorkflow(ctx, "wf-concurrent", 0)
	require.NoError(t, err)
	assert.Len(t, traces, writers)
}

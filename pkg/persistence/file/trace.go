package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

// TraceRepository handles execution trace file operations. Each trace is an
// independent file under executions/<workflow_id>/, so concurrent executions
// append without coordinating.
type TraceRepository struct {
	root string // File system root for storing execution traces
}

// NewTraceRepository creates a new trace repository.
func NewTraceRepository(root string) *TraceRepository {
	return &TraceRepository{root: root}
}

// Append writes an execution trace. Traces are immutable: appending an
// execution id that already exists is an error.
func (tr *TraceRepository) Append(_ context.Context, trace *models.ExecutionTrace) error {
	if err := validateID(trace.ExecutionID); err != nil {
		return persistence.NewTraceError("Append", trace.WorkflowID, trace.ExecutionID, err)
	}

	if err := validateID(trace.WorkflowID); err != nil {
		return persistence.NewTraceError("Append", trace.WorkflowID, trace.ExecutionID, err)
	}

	dir := path.Join(tr.root, "executions", trace.WorkflowID)

	err := os.MkdirAll(dir, 0750)
	if err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(trace, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trace %s: %w", trace.ExecutionID, err)
	}

	filePath := filepath.Clean(path.Join(dir, trace.ExecutionID+".json"))

	// O_EXCL keeps the store append-only: a second write with the same
	// execution id fails instead of mutating the prior record.
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return persistence.NewTraceError("Append", trace.WorkflowID, trace.ExecutionID, persistence.ErrTraceAlreadyExists)
		}

		return fmt.Errorf("failed to create trace file %s: %w", trace.ExecutionID, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to write trace %s: %w", trace.ExecutionID, err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()

		return fmt.Errorf("failed to sync trace %s: %w", trace.ExecutionID, err)
	}

	return f.Close()
}

// GetByID retrieves an execution trace by its execution id.
func (tr *TraceRepository) GetByID(_ context.Context, executionID string) (*models.ExecutionTrace, error) {
	if err := validateID(executionID); err != nil {
		return nil, persistence.NewTraceError("GetByID", "", executionID, err)
	}

	executionsDir := path.Join(tr.root, "executions")
	if _, err := os.Stat(executionsDir); os.IsNotExist(err) {
		return nil, persistence.NewTraceError("GetByID", "", executionID, persistence.ErrTraceNotFound)
	}

	root := os.DirFS(executionsDir)

	matches, err := fs.Glob(root, path.Join("*", executionID+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to search for trace %s: %w", executionID, err)
	}

	if len(matches) == 0 {
		return nil, persistence.NewTraceError("GetByID", "", executionID, persistence.ErrTraceNotFound)
	}

	return tr.readTrace(path.Join(executionsDir, matches[0]))
}

// ListByWorkflow returns up to limit traces for a workflow, most recent first.
func (tr *TraceRepository) ListByWorkflow(_ context.Context, workflowID string, limit int) ([]*models.ExecutionTrace, error) {
	if err := validateID(workflowID); err != nil {
		return nil, persistence.NewTraceError("ListByWorkflow", workflowID, "", err)
	}

	dir := path.Join(tr.root, "executions", workflowID)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []*models.ExecutionTrace{}, nil
	}

	root := os.DirFS(dir)

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list trace files: %w", err)
	}

	traces := make([]*models.ExecutionTrace, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		trace, err := tr.readTrace(path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to load trace %s: %w", strings.TrimSuffix(file, ".json"), err)
		}

		traces = append(traces, trace)
	}

	sort.Slice(traces, func(i, j int) bool {
		return traces[i].CreatedAt.After(traces[j].CreatedAt)
	})

	if limit > 0 && len(traces) > limit {
		traces = traces[:limit]
	}

	return traces, nil
}

func (tr *TraceRepository) readTrace(filePath string) (*models.ExecutionTrace, error) {
	body, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to read trace file: %w", err)
	}

	var trace models.ExecutionTrace

	err = json.Unmarshal(body, &trace)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal trace: %w", err)
	}

	return &trace, nil
}

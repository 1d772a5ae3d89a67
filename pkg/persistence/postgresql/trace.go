package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

// TraceRepository handles execution trace database operations. One row per
// execution; rows are inserted once and never updated.
type TraceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTraceRepository creates a new trace repository.
func NewTraceRepository(db *sql.DB, logger *slog.Logger) *TraceRepository {
	return &TraceRepository{db: db, logger: logger}
}

// Append inserts an execution trace. Inserting a duplicate execution id is an
// error, which keeps the store append-only.
func (r *TraceRepository) Append(ctx context.Context, trace *models.ExecutionTrace) error {
	pathJSON, err := json.Marshal(trace.ExecutionPath)
	if err != nil {
		return fmt.Errorf("failed to marshal execution path: %w", err)
	}

	outputsJSON, err := json.Marshal(trace.NodeOutputs)
	if err != nil {
		return fmt.Errorf("failed to marshal node outputs: %w", err)
	}

	var finalOutputJSON []byte
	if trace.FinalOutput != nil {
		finalOutputJSON, err = json.Marshal(trace.FinalOutput)
		if err != nil {
			return fmt.Errorf("failed to marshal final output: %w", err)
		}
	}

	var errorMessage sql.NullString
	if trace.ErrorMessage != "" {
		errorMessage = sql.NullString{String: trace.ErrorMessage, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO execution_traces
			(execution_id, workflow_id, test_input, execution_path, node_outputs, final_output, processing_time, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		trace.ExecutionID,
		trace.WorkflowID,
		trace.TestInput,
		pathJSON,
		outputsJSON,
		finalOutputJSON,
		trace.ProcessingTime,
		string(trace.Status),
		errorMessage,
		trace.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return persistence.NewTraceError("Append", trace.WorkflowID, trace.ExecutionID, persistence.ErrTraceAlreadyExists)
		}

		return fmt.Errorf("failed to insert trace: %w", err)
	}

	return nil
}

// GetByID returns a trace by its execution id.
func (r *TraceRepository) GetByID(ctx context.Context, executionID string) (*models.ExecutionTrace, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			execution_id
		  , workflow_id
		  , test_input
		  , execution_path
		  , node_outputs
		  , final_output
		  , processing_time
		  , status
		  , error_message
		  , created_at
		FROM execution_traces
		WHERE execution_id = $1
	`, executionID)

	trace, err := r.scanTrace(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewTraceError("GetByID", "", executionID, persistence.ErrTraceNotFound)
		}

		return nil, fmt.Errorf("failed to scan trace: %w", err)
	}

	return trace, nil
}

// ListByWorkflow returns up to limit traces for a workflow, most recent first.
func (r *TraceRepository) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*models.ExecutionTrace, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			execution_id
		  , workflow_id
		  , test_input
		  , execution_path
		  , node_outputs
		  , final_output
		  , processing_time
		  , status
		  , error_message
		  , created_at
		FROM execution_traces
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query traces: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close trace rows", "error", err)
		}
	}()

	traces := make([]*models.ExecutionTrace, 0)

	for rows.Next() {
		trace, err := r.scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trace: %w", err)
		}

		traces = append(traces, trace)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating traces: %w", err)
	}

	return traces, nil
}

func (r *TraceRepository) scanTrace(row rowScanner) (*models.ExecutionTrace, error) {
	var (
		trace           models.ExecutionTrace
		status          string
		pathJSON        []byte
		outputsJSON     []byte
		finalOutputJSON []byte
		errorMessage    sql.NullString
	)

	err := row.Scan(
		&trace.ExecutionID,
		&trace.WorkflowID,
		&trace.TestInput,
		&pathJSON,
		&outputsJSON,
		&finalOutputJSON,
		&trace.ProcessingTime,
		&status,
		&errorMessage,
		&trace.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	trace.Status = models.ExecutionStatus(status)

	err = json.Unmarshal(pathJSON, &trace.ExecutionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution path: %w", err)
	}

	err = json.Unmarshal(outputsJSON, &trace.NodeOutputs)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal node outputs: %w", err)
	}

	if len(finalOutputJSON) > 0 {
		err = json.Unmarshal(finalOutputJSON, &trace.FinalOutput)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal final output: %w", err)
		}
	}

	if errorMessage.Valid {
		trace.ErrorMessage = errorMessage.String
	}

	return &trace, nil
}

package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewWorkflowRepository creates a new workflow repository.
func NewWorkflowRepository(db *sql.DB, logger *slog.Logger) *WorkflowRepository {
	return &WorkflowRepository{db: db, logger: logger}
}

// List returns all non-deleted workflows, most recently created first.
func (r *WorkflowRepository) List(ctx context.Context) ([]*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , mode
		  , active
		  , version
		  , metadata
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func(ctx context.Context, r *WorkflowRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := r.scanWorkflowBase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		err = r.loadNodesAndConnections(ctx, workflow)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow nodes: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating workflows: %w", err)
	}

	return workflows, nil
}

// GetByID returns a workflow by its ID.
func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , mode
		  , active
		  , version
		  , metadata
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	workflow, err := r.scanWorkflowBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetByID", id, persistence.ErrWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadNodesAndConnections(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow nodes: %w", err)
	}

	return workflow, nil
}

// GetActiveByMode returns the single active workflow for a mode.
func (r *WorkflowRepository) GetActiveByMode(ctx context.Context, mode models.WorkflowMode) (*models.Workflow, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , mode
		  , active
		  , version
		  , metadata
		  , created_at
		  , updated_at
		  , deleted_at
		FROM workflows
		WHERE mode = $1 AND active AND deleted_at IS NULL
	`

	row := r.db.QueryRowContext(ctx, query, string(mode))

	workflow, err := r.scanWorkflowBase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewWorkflowError("GetActiveByMode", string(mode), persistence.ErrActiveWorkflowNotFound)
		}

		return nil, fmt.Errorf("failed to scan workflow: %w", err)
	}

	if err := r.loadNodesAndConnections(ctx, workflow); err != nil {
		return nil, fmt.Errorf("failed to load workflow nodes: %w", err)
	}

	return workflow, nil
}

// Save upserts a workflow together with its nodes and connections.
func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	now := time.Now().UTC()

	if workflow.CreatedAt.IsZero() {
		workflow.CreatedAt = now
	}

	workflow.UpdatedAt = now

	if workflow.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate workflow ID: %w", err)
		}

		workflow.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	metadataJSON, err := json.Marshal(workflow.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	upsert := `
		INSERT INTO workflows (id, name, description, mode, active, version, metadata, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			mode = EXCLUDED.mode,
			active = EXCLUDED.active,
			version = EXCLUDED.version,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = tx.ExecContext(ctx, upsert,
		workflow.ID,
		workflow.Name,
		workflow.Description,
		string(workflow.Mode),
		workflow.Active,
		workflow.Version,
		metadataJSON,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	err = r.replaceNodes(ctx, tx, workflow)
	if err != nil {
		return err
	}

	err = r.replaceConnections(ctx, tx, workflow)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete soft deletes a workflow by setting deleted_at.
func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET deleted_at = $1, active = false WHERE id = $2 AND deleted_at IS NULL",
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewWorkflowError("Delete", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

func (r *WorkflowRepository) replaceNodes(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM workflow_nodes WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to clear workflow nodes: %w", err)
	}

	for _, node := range workflow.Nodes {
		configJSON, err := json.Marshal(node.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal node config: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO workflow_nodes (workflow_id, id, kind, name, position, config, enabled)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, workflow.ID, node.ID, string(node.Kind), node.Name, node.Position, configJSON, node.Enabled)
		if err != nil {
			return fmt.Errorf("failed to save node %s: %w", node.ID, err)
		}
	}

	return nil
}

func (r *WorkflowRepository) replaceConnections(ctx context.Context, tx *sql.Tx, workflow *models.Workflow) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM workflow_connections WHERE workflow_id = $1", workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to clear workflow connections: %w", err)
	}

	for _, connection := range workflow.Connections {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workflow_connections (workflow_id, id, source_node, target_node)
			VALUES ($1, $2, $3, $4)
		`, workflow.ID, connection.ID, connection.SourceNode, connection.TargetNode)
		if err != nil {
			return fmt.Errorf("failed to save connection %s: %w", connection.ID, err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *WorkflowRepository) scanWorkflowBase(row rowScanner) (*models.Workflow, error) {
	var (
		workflow     models.Workflow
		mode         string
		metadataJSON []byte
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.Name,
		&workflow.Description,
		&mode,
		&workflow.Active,
		&workflow.Version,
		&metadataJSON,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Mode = models.WorkflowMode(mode)

	if len(metadataJSON) > 0 {
		err = json.Unmarshal(metadataJSON, &workflow.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}

func (r *WorkflowRepository) loadNodesAndConnections(ctx context.Context, workflow *models.Workflow) error {
	nodeRows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, name, position, config, enabled
		FROM workflow_nodes
		WHERE workflow_id = $1
		ORDER BY position ASC
	`, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow nodes: %w", err)
	}

	defer func() {
		if err := nodeRows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close node rows", "error", err)
		}
	}()

	workflow.Nodes = make([]*models.WorkflowNode, 0)

	for nodeRows.Next() {
		var (
			node       models.WorkflowNode
			kind       string
			configJSON []byte
		)

		err = nodeRows.Scan(&node.ID, &kind, &node.Name, &node.Position, &configJSON, &node.Enabled)
		if err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}

		node.Kind = models.NodeKind(kind)

		if len(configJSON) > 0 {
			err = json.Unmarshal(configJSON, &node.Config)
			if err != nil {
				return fmt.Errorf("failed to unmarshal node config: %w", err)
			}
		}

		workflow.Nodes = append(workflow.Nodes, &node)
	}

	err = nodeRows.Err()
	if err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	connectionRows, err := r.db.QueryContext(ctx, `
		SELECT id, source_node, target_node
		FROM workflow_connections
		WHERE workflow_id = $1
	`, workflow.ID)
	if err != nil {
		return fmt.Errorf("failed to query workflow connections: %w", err)
	}

	defer func() {
		if err := connectionRows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close connection rows", "error", err)
		}
	}()

	workflow.Connections = make([]*models.Connection, 0)

	for connectionRows.Next() {
		var connection models.Connection

		err = connectionRows.Scan(&connection.ID, &connection.SourceNode, &connection.TargetNode)
		if err != nil {
			return fmt.Errorf("failed to scan connection: %w", err)
		}

		workflow.Connections = append(workflow.Connections, &connection)
	}

	err = connectionRows.Err()
	if err != nil {
		return fmt.Errorf("error iterating connections: %w", err)
	}

	return nil
}

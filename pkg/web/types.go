// Package web provides HTTP handlers and REST API endpoints for workflow
// management and execution.
package web

import "github.com/raglinehq/ragline/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string              `json:"name"        validate:"required,min=3"`
	Description string              `json:"description"`
	Mode        string              `json:"mode"        validate:"required,oneof=fast thorough code"`
	Nodes       []NodeRequest       `json:"nodes"       validate:"required,min=1,dive"`
	Connections []models.Connection `json:"connections,omitempty"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow. All fields are optional to support partial updates.
type UpdateWorkflowRequest struct {
	Name        *string        `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string        `json:"description,omitempty"`
	Nodes       []NodeRequest  `json:"nodes,omitempty"       validate:"omitempty,min=1,dive"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// NodeRequest describes one pipeline stage within a workflow request.
type NodeRequest struct {
	ID       string         `json:"id,omitempty"`
	Kind     string         `json:"kind"     validate:"required,oneof=input router retriever generator output"`
	Name     string         `json:"name"     validate:"required,min=1"`
	Position int            `json:"position"`
	Config   map[string]any `json:"config,omitempty"`
	Enabled  bool           `json:"enabled"`
}

// ExecuteWorkflowRequest represents the request body for running a workflow.
type ExecuteWorkflowRequest struct {
	TestInput  string `json:"test_input"             validate:"required"`
	StopAtNode string `json:"stop_at_node,omitempty"`
}

// ExecuteWorkflowResponse is the response body of the execute endpoints. It
// carries the trace under execution-facing names: the per-node records are
// exposed as execution_flow and the run duration as total_time. Persisted
// traces read back through the execution endpoints keep their stored layout.
type ExecuteWorkflowResponse struct {
	ExecutionID   string                       `json:"execution_id"`
	WorkflowID    string                       `json:"workflow_id"`
	Status        models.ExecutionStatus       `json:"status"`
	ExecutionFlow []models.NodeExecutionRecord `json:"execution_flow"`
	FinalOutput   any                          `json:"final_output,omitempty"`
	TotalTime     float64                      `json:"total_time"`
	ErrorMessage  string                       `json:"error_message,omitempty"`
}

func toExecuteResponse(trace *models.ExecutionTrace) ExecuteWorkflowResponse {
	return ExecuteWorkflowResponse{
		ExecutionID:   trace.ExecutionID,
		WorkflowID:    trace.WorkflowID,
		Status:        trace.Status,
		ExecutionFlow: trace.NodeOutputs,
		FinalOutput:   trace.FinalOutput,
		TotalTime:     trace.ProcessingTime,
		ErrorMessage:  trace.ErrorMessage,
	}
}

func (r CreateWorkflowRequest) toModel() *models.Workflow {
	workflow := &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Mode:        models.WorkflowMode(r.Mode),
		Metadata:    r.Metadata,
		Nodes:       toModelNodes(r.Nodes),
		Connections: make([]*models.Connection, 0, len(r.Connections)),
	}

	for i := range r.Connections {
		connection := r.Connections[i]
		workflow.Connections = append(workflow.Connections, &connection)
	}

	return workflow
}

func toModelNodes(nodes []NodeRequest) []*models.WorkflowNode {
	out := make([]*models.WorkflowNode, 0, len(nodes))

	for _, node := range nodes {
		out = append(out, &models.WorkflowNode{
			ID:       node.ID,
			Kind:     models.NodeKind(node.Kind),
			Name:     node.Name,
			Position: node.Position,
			Config:   node.Config,
			Enabled:  node.Enabled,
		})
	}

	return out
}

// Package models defines the core domain models for pipeline execution.
package models

import (
	"sort"
	"time"
)

// WorkflowMode is the operating profile a workflow is tuned for.
type WorkflowMode string

const (
	WorkflowModeFast     WorkflowMode = "fast"     // Low-latency answering
	WorkflowModeThorough WorkflowMode = "thorough" // Retrieval-heavy answering
	WorkflowModeCode     WorkflowMode = "code"     // Code-focused answering
)

// ValidModes lists every supported workflow mode.
func ValidModes() []WorkflowMode {
	return []WorkflowMode{WorkflowModeFast, WorkflowModeThorough, WorkflowModeCode}
}

// Workflow represents a versioned pipeline definition. At most one workflow
// may be active per mode at a time; prior versions are retained, not
// overwritten.
type Workflow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Mode        WorkflowMode    `json:"mode"        validate:"required,oneof=fast thorough code"`
	Active      bool            `json:"active"`
	Version     int             `json:"version"`
	Nodes       []*WorkflowNode `json:"nodes"`
	Connections []*Connection   `json:"connections"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// EnabledNodesInOrder returns the enabled nodes sorted by position ascending.
// Disabled nodes keep their position for layout purposes but are invisible to
// execution.
func (w *Workflow) EnabledNodesInOrder() []*WorkflowNode {
	nodes := make([]*WorkflowNode, 0, len(w.Nodes))

	for _, node := range w.Nodes {
		if node.Enabled {
			nodes = append(nodes, node)
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Position < nodes[j].Position
	})

	return nodes
}

// NodeByID returns the node with the given id, enabled or not.
func (w *Workflow) NodeByID(nodeID string) (*WorkflowNode, bool) {
	for _, node := range w.Nodes {
		if node.ID == nodeID {
			return node, true
		}
	}

	return nil, false
}

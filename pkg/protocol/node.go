// Package protocol defines the interfaces and contracts for pipeline nodes
// and their external collaborators.
package protocol

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
)

// Node is one executable pipeline stage. Execute receives the value carried
// from the previous stage and returns the value to carry into the next one.
// A returned error means the node failed; nodes never swallow errors or
// retry.
type Node interface {
	// ID returns the node instance identifier
	ID() string

	// Kind returns the node kind this instance implements
	Kind() models.NodeKind

	// Execute runs the stage against the carried value
	Execute(ctx context.Context, value any) (any, error)
}

// NodeFactory creates node instances and provides metadata about the node
// kind.
type NodeFactory interface {
	// Create creates a new node instance with the given configuration
	Create(ctx context.Context, id string, config map[string]any) (Node, error)

	// Kind returns the node kind this factory builds
	Kind() models.NodeKind

	// Name returns the human-readable name for this node kind
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for configuring this node
	Schema() map[string]any
}

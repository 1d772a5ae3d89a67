package router

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// NodeFactory creates RouterNode instances.
type NodeFactory struct{}

// NewNodeFactory creates a new factory instance.
func NewNodeFactory() protocol.NodeFactory {
	return &NodeFactory{}
}

// Create creates a new RouterNode instance.
func (f *NodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewRouterNode(id, config)
}

// Kind returns the node kind this factory builds.
func (f *NodeFactory) Kind() models.NodeKind {
	return models.NodeKindRouter
}

// Name returns the factory name.
func (f *NodeFactory) Name() string {
	return "Intent Router"
}

// Description returns the factory description.
func (f *NodeFactory) Description() string {
	return "Detects coarse intent (question, generation, greeting) with an ordered keyword heuristic and produces an advisory routing decision"
}

// Schema returns the JSON schema for router node configuration.
func (f *NodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

package input

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// NodeFactory creates InputNode instances.
type NodeFactory struct{}

// NewNodeFactory creates a new factory instance.
func NewNodeFactory() protocol.NodeFactory {
	return &NodeFactory{}
}

// Create creates a new InputNode instance.
func (f *NodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewInputNode(id, config)
}

// Kind returns the node kind this factory builds.
func (f *NodeFactory) Kind() models.NodeKind {
	return models.NodeKindInput
}

// Name returns the factory name.
func (f *NodeFactory) Name() string {
	return "Input"
}

// Description returns the factory description.
func (f *NodeFactory) Description() string {
	return "Normalizes the raw test input: enforces a maximum length with marked truncation and attaches a processing timestamp"
}

// Schema returns the JSON schema for input node configuration.
func (f *NodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"max_length": map[string]any{
				"type":        "integer",
				"description": "Maximum accepted input length in bytes; longer inputs are truncated with an explicit marker",
				"minimum":     1,
				"default":     DefaultMaxLength,
			},
		},
	}
}

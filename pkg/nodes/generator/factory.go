package generator

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// NodeFactory creates GeneratorNode instances bound to a generation
// collaborator. A nil service selects the deterministic stub for every node
// built by this factory.
type NodeFactory struct {
	service protocol.GenerationService
}

// NewNodeFactory creates a new factory instance.
func NewNodeFactory(service protocol.GenerationService) protocol.NodeFactory {
	return &NodeFactory{service: service}
}

// Create creates a new GeneratorNode instance.
func (f *NodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewGeneratorNode(id, config, f.service)
}

// Kind returns the node kind this factory builds.
func (f *NodeFactory) Kind() models.NodeKind {
	return models.NodeKindGenerator
}

// Name returns the factory name.
func (f *NodeFactory) Name() string {
	return "Text Generator"
}

// Description returns the factory description.
func (f *NodeFactory) Description() string {
	return "Builds a prompt from the routing decision and retrieved documents, then calls the generation collaborator (or its deterministic stub)"
}

// Schema returns the JSON schema for generator node configuration.
func (f *NodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{
				"type":        "string",
				"description": "Generation profile forwarded to the collaborator",
			},
			"max_tokens": map[string]any{
				"type":        "integer",
				"description": "Upper bound on generated tokens, forwarded to the collaborator",
				"minimum":     1,
			},
			"timeout_ms": map[string]any{
				"type":        "integer",
				"description": "Collaborator call timeout in milliseconds",
				"minimum":     1,
				"default":     10000,
			},
		},
	}
}

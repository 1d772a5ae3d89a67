package output

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// NodeFactory creates OutputNode instances.
type NodeFactory struct{}

// NewNodeFactory creates a new factory instance.
func NewNodeFactory() protocol.NodeFactory {
	return &NodeFactory{}
}

// Create creates a new OutputNode instance.
func (f *NodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewOutputNode(id, config)
}

// Kind returns the node kind this factory builds.
func (f *NodeFactory) Kind() models.NodeKind {
	return models.NodeKindOutput
}

// Name returns the factory name.
func (f *NodeFactory) Name() string {
	return "Output Formatter"
}

// Description returns the factory description.
func (f *NodeFactory) Description() string {
	return "Applies the configured presentation format (plain, detailed or code block) to the generated text"
}

// Schema returns the JSON schema for output node configuration.
func (f *NodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"format": map[string]any{
				"type":        "string",
				"description": "Presentation format for the final response",
				"enum":        []string{FormatPlain, FormatDetailed, FormatCode},
				"default":     FormatPlain,
			},
		},
	}
}

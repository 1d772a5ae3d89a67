package retriever

import (
	"context"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// NodeFactory creates RetrieverNode instances bound to a retrieval
// collaborator. A nil service means the collaborator is not wired in and
// every node built by this factory degrades to placeholders.
type NodeFactory struct {
	service protocol.RetrievalService
}

// NewNodeFactory creates a new factory instance.
func NewNodeFactory(service protocol.RetrievalService) protocol.NodeFactory {
	return &NodeFactory{service: service}
}

// Create creates a new RetrieverNode instance.
func (f *NodeFactory) Create(_ context.Context, id string, config map[string]any) (protocol.Node, error) {
	return NewRetrieverNode(id, config, f.service)
}

// Kind returns the node kind this factory builds.
func (f *NodeFactory) Kind() models.NodeKind {
	return models.NodeKindRetriever
}

// Name returns the factory name.
func (f *NodeFactory) Name() string {
	return "Document Retriever"
}

// Description returns the factory description.
func (f *NodeFactory) Description() string {
	return "Fetches top-K candidate documents from the retrieval collaborator, degrading to a deterministic placeholder set when none is wired"
}

// Schema returns the JSON schema for retriever node configuration.
func (f *NodeFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"top_k": map[string]any{
				"type":        "integer",
				"description": "Number of candidate documents to request",
				"minimum":     1,
				"default":     DefaultTopK,
			},
			"timeout_ms": map[string]any{
				"type":        "integer",
				"description": "Collaborator call timeout in milliseconds",
				"minimum":     1,
				"default":     5000,
			},
		},
	}
}

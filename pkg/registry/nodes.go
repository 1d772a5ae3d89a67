// Package registry provides node factory registration for the built-in pipeline stages.
package registry

import (
	"github.com/raglinehq/ragline/pkg/nodes/generator"
	"github.com/raglinehq/ragline/pkg/nodes/input"
	"github.com/raglinehq/ragline/pkg/nodes/output"
	"github.com/raglinehq/ragline/pkg/nodes/retriever"
	"github.com/raglinehq/ragline/pkg/nodes/router"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// RegisterDefaultNodes registers all built-in node factories. Nil collaborator
// services select the deterministic stand-ins for the retriever and generator
// stages.
func (r *Registry) RegisterDefaultNodes(retrievalSvc protocol.RetrievalService, generationSvc protocol.GenerationService) {
	r.RegisterNode(input.NewNodeFactory())
	r.RegisterNode(router.NewNodeFactory())
	r.RegisterNode(retriever.NewNodeFactory(retrievalSvc))
	r.RegisterNode(generator.NewNodeFactory(generationSvc))
	r.RegisterNode(output.NewNodeFactory())
}

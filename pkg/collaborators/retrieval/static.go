// Package retrieval provides document retrieval collaborator implementations.
package retrieval

import (
	"context"

	"github.com/raglinehq/ragline/pkg/protocol"
)

// PlaceholderSource tags documents that came from the deterministic stand-in
// rather than a live retrieval backend.
const PlaceholderSource = "placeholder"

// StaticService is a deterministic retrieval collaborator. It backs tests and
// environments where no live retrieval backend is wired in; the retriever
// node also uses its document set when degrading.
type StaticService struct {
	documents []protocol.Document
}

// NewStaticService creates a static service serving the given documents. With
// no documents it serves the built-in placeholder set.
func NewStaticService(documents ...protocol.Document) *StaticService {
	if len(documents) == 0 {
		documents = PlaceholderDocuments()
	}

	return &StaticService{documents: documents}
}

// Search returns up to maxResults documents from the fixed set. The result is
// identical for identical arguments.
func (s *StaticService) Search(_ context.Context, _ string, maxResults int) ([]protocol.Document, error) {
	if maxResults <= 0 || maxResults > len(s.documents) {
		maxResults = len(s.documents)
	}

	results := make([]protocol.Document, maxResults)
	copy(results, s.documents[:maxResults])

	return results, nil
}

// PlaceholderDocuments returns the deterministic stand-in document set used
// when the retrieval collaborator is unavailable. The shape matches live
// results so downstream stages and tests behave identically either way.
func PlaceholderDocuments() []protocol.Document {
	return []protocol.Document{
		{
			ID:        "doc-001",
			Title:     "Introduction to Retrieval-Augmented Generation",
			Content:   "Retrieval-augmented generation combines a document retriever with a text generator so answers can cite indexed sources.",
			Relevance: 0.95,
			Source:    PlaceholderSource,
		},
		{
			ID:        "doc-002",
			Title:     "Pipeline Design Basics",
			Content:   "A request pipeline passes one input through typed stages in order, each stage transforming the value it receives.",
			Relevance: 0.87,
			Source:    PlaceholderSource,
		},
		{
			ID:        "doc-003",
			Title:     "Tracing Pipeline Executions",
			Content:   "Recording every stage's input, output and timing makes a pipeline run replayable and debuggable after the fact.",
			Relevance: 0.74,
			Source:    PlaceholderSource,
		},
	}
}

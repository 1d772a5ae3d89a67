package protocol

import "context"

// Document is one ranked retrieval candidate.
type Document struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"`
	Source    string  `json:"source"`
}

// RetrievalService is the document retrieval collaborator. Implementations
// live outside the engine; a nil service means the collaborator is not wired
// in, and the retriever node degrades to a deterministic placeholder set.
type RetrievalService interface {
	Search(ctx context.Context, query string, maxResults int) ([]Document, error)
}

// GenerationParams tune a single generation call.
type GenerationParams struct {
	Mode      string `json:"mode,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// Generation is the result of one generation call.
type Generation struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// GenerationService is the text generation collaborator. Like retrieval, a
// nil service degrades the generator node to its deterministic stub.
type GenerationService interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (Generation, error)
}

// Package generation provides text generation collaborator implementations.
package generation

import (
	"context"
	"fmt"

	"github.com/raglinehq/ragline/pkg/protocol"
)

// StaticModelTag is the model tag reported by the deterministic stub.
const StaticModelTag = "static"

// StaticService is a deterministic generation collaborator used in tests and
// in configurations with no live model wired in. Its output is a function of
// the prompt alone; do not infer model behavior from it.
type StaticService struct{}

// NewStaticService creates the deterministic generation stub.
func NewStaticService() *StaticService {
	return &StaticService{}
}

// Generate returns a deterministic response echoing the prompt context size.
func (s *StaticService) Generate(_ context.Context, prompt string, params protocol.GenerationParams) (protocol.Generation, error) {
	text := fmt.Sprintf("Generated response based on %d characters of context.", len(prompt))
	if params.Mode != "" {
		text = fmt.Sprintf("[%s] %s", params.Mode, text)
	}

	return protocol.Generation{
		Text: text,
		Metadata: map[string]any{
			"model":       StaticModelTag,
			"prompt_size": len(prompt),
		},
	}, nil
}

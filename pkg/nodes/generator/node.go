// Package generator provides the text generation node for pipeline execution.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raglinehq/ragline/pkg/collaborators/generation"
	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/nodes"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// DefaultTimeout bounds one collaborator call.
const DefaultTimeout = 10 * time.Second

// GeneratorNode builds a prompt context from the routing decision and any
// retrieved documents, then calls the generation collaborator. With no
// collaborator wired in it uses the deterministic stub.
type GeneratorNode struct {
	id        string
	mode      string
	maxTokens int
	timeout   time.Duration
	service   protocol.GenerationService
}

// NewGeneratorNode creates a new generator node. A nil service selects the
// deterministic stub.
func NewGeneratorNode(id string, config map[string]any, service protocol.GenerationService) (*GeneratorNode, error) {
	if service == nil {
		service = generation.NewStaticService()
	}

	node := &GeneratorNode{
		id:      id,
		timeout: DefaultTimeout,
		service: service,
	}

	if mode, ok := config["mode"].(string); ok {
		node.mode = mode
	}

	if raw, ok := config["max_tokens"].(float64); ok && raw > 0 {
		node.maxTokens = int(raw)
	}

	if raw, ok := config["timeout_ms"].(float64); ok && raw > 0 {
		node.timeout = time.Duration(raw) * time.Millisecond
	}

	return node, nil
}

// ID returns the node ID.
func (n *GeneratorNode) ID() string {
	return n.id
}

// Kind returns the node kind.
func (n *GeneratorNode) Kind() models.NodeKind {
	return models.NodeKindGenerator
}

// Execute generates the response text for the carried query and context.
func (n *GeneratorNode) Execute(ctx context.Context, value any) (any, error) {
	text, _ := nodes.Text(value)
	intent, _ := nodes.StringField(value, "intent")
	documents := nodes.Documents(value)

	prompt := buildPrompt(text, intent, documents)

	generateCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	result, err := n.service.Generate(generateCtx, prompt, protocol.GenerationParams{
		Mode:      n.mode,
		MaxTokens: n.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	model := ""
	if result.Metadata != nil {
		model, _ = result.Metadata["model"].(string)
	}

	return map[string]any{
		"text":         result.Text,
		"model":        model,
		"context_size": len(prompt),
	}, nil
}

// buildPrompt combines the routed input with retrieved document content into
// one generation context.
func buildPrompt(text, intent string, documents []protocol.Document) string {
	var b strings.Builder

	if intent != "" {
		b.WriteString("Intent: ")
		b.WriteString(intent)
		b.WriteString("\n")
	}

	if len(documents) > 0 {
		b.WriteString("Context:\n")

		for _, doc := range documents {
			b.WriteString("- ")
			b.WriteString(doc.Title)
			b.WriteString(": ")
			b.WriteString(doc.Content)
			b.WriteString("\n")
		}
	}

	b.WriteString("Input: ")
	b.WriteString(text)

	return b.String()
}

// Package input provides the input normalization node for pipeline execution.
package input

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/nodes"
)

const (
	// DefaultMaxLength caps the accepted input size when none is configured.
	DefaultMaxLength = 4000

	// TruncationMarker is appended to inputs cut at max_length.
	TruncationMarker = " …[truncated]"
)

// InputNode normalizes the raw test input: it enforces a maximum length by
// truncating with an explicit marker (never erroring) and stamps the envelope
// with a processing timestamp.
type InputNode struct {
	id        string
	maxLength int
}

// NewInputNode creates a new input node.
func NewInputNode(id string, config map[string]any) (*InputNode, error) {
	maxLength := DefaultMaxLength

	if raw, ok := config["max_length"].(float64); ok && raw > 0 {
		maxLength = int(raw)
	} else if raw, ok := config["max_length"].(int); ok && raw > 0 {
		maxLength = raw
	}

	return &InputNode{id: id, maxLength: maxLength}, nil
}

// ID returns the node ID.
func (n *InputNode) ID() string {
	return n.id
}

// Kind returns the node kind.
func (n *InputNode) Kind() models.NodeKind {
	return models.NodeKindInput
}

// Execute normalizes the raw input into the pipeline envelope.
func (n *InputNode) Execute(_ context.Context, value any) (any, error) {
	text, _ := nodes.Text(value)

	originalLength := len(text)
	truncated := false

	if originalLength > n.maxLength {
		// Back off to a rune boundary so the cut never splits a multi-byte
		// character.
		cut := n.maxLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}

		text = text[:cut] + TruncationMarker
		truncated = true
	}

	return map[string]any{
		"text":            text,
		"original_length": originalLength,
		"truncated":       truncated,
		"processed_at":    time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

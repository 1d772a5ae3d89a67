// Package output provides the response formatting node for pipeline execution.
package output

import (
	"context"
	"fmt"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/nodes"
)

// Presentation formats supported by the output node.
const (
	FormatPlain    = "plain"
	FormatDetailed = "detailed"
	FormatCode     = "code"
)

// OutputNode applies the configured presentation format to the generated text
// and produces the final response payload.
type OutputNode struct {
	id     string
	format string
}

// NewOutputNode creates a new output node.
func NewOutputNode(id string, config map[string]any) (*OutputNode, error) {
	format := FormatPlain

	if raw, ok := config["format"].(string); ok {
		switch raw {
		case FormatPlain, FormatDetailed, FormatCode:
			format = raw
		default:
			return nil, fmt.Errorf("unsupported output format %q", raw)
		}
	}

	return &OutputNode{id: id, format: format}, nil
}

// ID returns the node ID.
func (n *OutputNode) ID() string {
	return n.id
}

// Kind returns the node kind.
func (n *OutputNode) Kind() models.NodeKind {
	return models.NodeKindOutput
}

// Execute formats the generated text into the final response payload.
func (n *OutputNode) Execute(_ context.Context, value any) (any, error) {
	text, _ := nodes.Text(value)

	response := text

	switch n.format {
	case FormatDetailed:
		model, _ := nodes.StringField(value, "model")
		contextSize, _ := nodes.Field(value, "context_size")
		response = fmt.Sprintf("%s\n\n---\nmodel: %s\ncontext size: %v", text, model, contextSize)
	case FormatCode:
		response = "```\n" + text + "\n```"
	}

	return map[string]any{
		"response": response,
		"format":   n.format,
	}, nil
}

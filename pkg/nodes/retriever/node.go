// Package retriever provides the document retrieval node for pipeline execution.
package retriever

import (
	"context"
	"fmt"
	"time"

	"github.com/raglinehq/ragline/pkg/collaborators/retrieval"
	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/nodes"
	"github.com/raglinehq/ragline/pkg/nodes/router"
	"github.com/raglinehq/ragline/pkg/protocol"
)

const (
	// DefaultTopK is the number of candidate documents requested when the
	// configuration does not say otherwise.
	DefaultTopK = 3

	// DefaultTimeout bounds one collaborator call.
	DefaultTimeout = 5 * time.Second
)

// RetrieverNode fetches ranked candidate documents for the routed query. With
// no collaborator wired in it degrades to the deterministic placeholder set;
// a wired collaborator that fails or times out is a node failure.
type RetrieverNode struct {
	id      string
	topK    int
	timeout time.Duration
	service protocol.RetrievalService
}

// NewRetrieverNode creates a new retriever node. A nil service selects the
// degraded placeholder behavior.
func NewRetrieverNode(id string, config map[string]any, service protocol.RetrievalService) (*RetrieverNode, error) {
	topK := DefaultTopK
	timeout := DefaultTimeout

	if raw, ok := config["top_k"].(float64); ok && raw > 0 {
		topK = int(raw)
	} else if raw, ok := config["top_k"].(int); ok && raw > 0 {
		topK = raw
	}

	if raw, ok := config["timeout_ms"].(float64); ok && raw > 0 {
		timeout = time.Duration(raw) * time.Millisecond
	}

	return &RetrieverNode{
		id:      id,
		topK:    topK,
		timeout: timeout,
		service: service,
	}, nil
}

// ID returns the node ID.
func (n *RetrieverNode) ID() string {
	return n.id
}

// Kind returns the node kind.
func (n *RetrieverNode) Kind() models.NodeKind {
	return models.NodeKindRetriever
}

// Execute retrieves candidate documents for the carried query and threads the
// routing decision through to the generator stage.
func (n *RetrieverNode) Execute(ctx context.Context, value any) (any, error) {
	text, _ := nodes.Text(value)
	intent, _ := nodes.StringField(value, "intent")

	// The router may have sent this input straight to the generator; the
	// pipeline still walks through this stage, it just skips the lookup.
	if target, ok := nodes.StringField(value, "target_route"); ok && target != router.RouteRetriever {
		return map[string]any{
			"text":              text,
			"intent":            intent,
			"documents":         []protocol.Document{},
			"document_count":    0,
			"retrieval_skipped": true,
		}, nil
	}

	documents, degraded, err := n.search(ctx, text)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"text":           text,
		"intent":         intent,
		"documents":      documents,
		"document_count": len(documents),
		"degraded":       degraded,
	}, nil
}

func (n *RetrieverNode) search(ctx context.Context, query string) ([]protocol.Document, bool, error) {
	if n.service == nil {
		documents := retrieval.PlaceholderDocuments()
		if n.topK < len(documents) {
			documents = documents[:n.topK]
		}

		return documents, true, nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	documents, err := n.service.Search(searchCtx, query, n.topK)
	if err != nil {
		return nil, false, fmt.Errorf("retrieval failed: %w", err)
	}

	return documents, false, nil
}

package retriever

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raglinehq/ragline/pkg/collaborators/retrieval"
	"github.com/raglinehq/ragline/pkg/nodes/router"
	"github.com/raglinehq/ragline/pkg/protocol"
)

type stubService struct {
	documents []protocol.Document
	err       error
	lastQuery string
	lastLimit int
}

func (s *stubService) Search(_ context.Context, query string, maxResults int) ([]protocol.Document, error) {
	s.lastQuery = query
	s.lastLimit = maxResults

	if s.err != nil {
		return nil, s.err
	}

	return s.documents, nil
}

type slowService struct{}

func (slowService) Search(ctx context.Context, _ string, _ int) ([]protocol.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Second):
		return []protocol.Document{}, nil
	}
}

func retrievalEnvelope(text, target string) map[string]any {
	return map[string]any{
		"text":         text,
		"intent":       router.IntentQuestion,
		"target_route": target,
	}
}

func TestRetrieverNode_Defaults(t *testing.T) {
	node, err := NewRetrieverNode("test-retriever", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "test-retriever", node.ID())
	assert.Equal(t, DefaultTopK, node.topK)
	assert.Equal(t, DefaultTimeout, node.timeout)
}

func TestRetrieverNode_Execute_WiredService(t *testing.T) {
	service := &stubService{documents: []protocol.Document{
		{ID: "d1", Title: "One", Content: "first", Relevance: 0.9, Source: "kb"},
		{ID: "d2", Title: "Two", Content: "second", Relevance: 0.5, Source: "kb"},
	}}

	node, err := NewRetrieverNode("test-retriever", map[string]any{"top_k": 2}, service)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), retrievalEnvelope("what is chunking", router.RouteRetriever))
	require.NoError(t, err)

	output, ok := result.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "what is chunking", service.lastQuery)
	assert.Equal(t, 2, service.lastLimit)
	assert.Equal(t, 2, output["document_count"])
	assert.Equal(t, false, output["degraded"])
	assert.Equal(t, service.documents, output["documents"])
}

func TestRetrieverNode_Execute_NilServiceDegrades(t *testing.T) {
	node, err := NewRetrieverNode("test-retriever", nil, nil)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), retrievalEnvelope("what is a placeholder", router.RouteRetriever))
	require.NoError(t, err)

	output := result.(map[string]any)
	assert.Equal(t, true, output["degraded"])

	documents, ok := output["documents"].([]protocol.Document)
	require.True(t, ok)
	require.Len(t, documents, DefaultTopK)

	for _, document := range documents {
		assert.Equal(t, retrieval.PlaceholderSource, document.Source)
		assert.NotEmpty(t, document.Content)
	}
}

func TestRetrieverNode_Execute_ServiceErrorFailsNode(t *testing.T) {
	service := &stubService{err: errors.New("backend down")}

	node, err := NewRetrieverNode("test-retriever", nil, service)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), retrievalEnvelope("what failed", router.RouteRetriever))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "retrieval failed")
}

func TestRetrieverNode_Execute_TimeoutFailsNode(t *testing.T) {
	node, err := NewRetrieverNode("test-retriever", map[string]any{"timeout_ms": float64(20)}, slowService{})
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), retrievalEnvelope("what is slow", router.RouteRetriever))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetrieverNode_Execute_SkipsNonRetrieverRoute(t *testing.T) {
	service := &stubService{err: errors.New("must not be called")}

	node, err := NewRetrieverNode("test-retriever", nil, service)
	require.NoError(t, err)

	result, err := node.Execute(context.Background(), retrievalEnvelope("hello", router.RouteGenerator))
	require.NoError(t, err)

	output := result.(map[string]any)
	assert.Equal(t, true, output["retrieval_skipped"])
	assert.Equal(t, 0, output["document_count"])
	assert.Empty(t, service.lastQuery, "backend must not be consulted")
}

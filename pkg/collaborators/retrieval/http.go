package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/raglinehq/ragline/pkg/protocol"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPService calls a live retrieval backend over JSON/HTTP. The backend is
// expected to answer GET <baseURL>/search?q=<query>&limit=<n> with a JSON
// array of documents.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService creates a retrieval client for the given backend base URL.
// A non-positive timeout falls back to the default.
func NewHTTPService(baseURL string, timeout time.Duration) *HTTPService {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &HTTPService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Search queries the retrieval backend for ranked candidate documents.
func (s *HTTPService) Search(ctx context.Context, query string, maxResults int) ([]protocol.Document, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&limit=%s",
		s.baseURL,
		url.QueryEscape(query),
		strconv.Itoa(maxResults),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build retrieval request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("retrieval request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return nil, fmt.Errorf("retrieval backend returned status %d: %s", resp.StatusCode, string(body))
	}

	var documents []protocol.Document

	err = json.NewDecoder(resp.Body).Decode(&documents)
	if err != nil {
		return nil, fmt.Errorf("failed to decode retrieval response: %w", err)
	}

	return documents, nil
}

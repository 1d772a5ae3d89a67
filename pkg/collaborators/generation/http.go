package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raglinehq/ragline/pkg/protocol"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPService calls a live generation backend over JSON/HTTP: POST
// <baseURL>/generate with {prompt, params}, answered with {text, metadata}.
type HTTPService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPService creates a generation client for the given backend base URL.
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

type generateRequest struct {
	Prompt string                    `json:"prompt"`
	Params protocol.GenerationParams `json:"params"`
}

// Generate sends the prompt context to the generation backend.
func (s *HTTPService) Generate(ctx context.Context, prompt string, params protocol.GenerationParams) (protocol.Generation, error) {
	payload, err := json.Marshal(generateRequest{Prompt: prompt, Params: params})
	if err != nil {
		return protocol.Generation{}, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/generate", bytes.NewReader(payload))
	if err != nil {
		return protocol.Generation{}, fmt.Errorf("failed to build generation request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return protocol.Generation{}, fmt.Errorf("generation request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return protocol.Generation{}, fmt.Errorf("generation backend returned status %d: %s", resp.StatusCode, string(body))
	}

	var generation protocol.Generation

	err = json.NewDecoder(resp.Body).Decode(&generation)
	if err != nil {
		return protocol.Generation{}, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return generation, nil
}

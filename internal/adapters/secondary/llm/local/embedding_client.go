// Package local adapts a local embedding server (an Ollama-compatible
// `/api/embed` endpoint) to port.EmbeddingClient, for the `local` embedding
// type (384D).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// EmbeddingClient calls a local embedding server over HTTP using the
// Ollama `/api/embed` request/response shape.
type EmbeddingClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	dimension  int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingClient creates a local embedding client.
func NewEmbeddingClient(cfg *config.EmbeddingConfig, dimension int) (*EmbeddingClient, error) {
	if cfg.LocalBaseURL == "" {
		return nil, errors.New("local: base url is required")
	}
	return &EmbeddingClient{
		httpClient: &http.Client{Timeout: cfg.SDKTimeout()},
		baseURL:    cfg.LocalBaseURL,
		model:      cfg.LocalModel,
		dimension:  dimension,
	}, nil
}

// CreateEmbeddings embeds a batch of texts against the local server.
func (c *EmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, port.NewProviderError(port.ErrorKindFatal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, port.NewProviderError(port.ErrorKindFatal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, port.NewProviderError(port.ErrorKindTimeout, err)
		}
		return nil, port.NewProviderError(port.ErrorKindServerError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, port.NewProviderError(port.ErrorKindRateLimited, fmt.Errorf("local embed: rate limited"))
	}
	if resp.StatusCode >= 500 {
		return nil, port.NewProviderError(port.ErrorKindServerError, fmt.Errorf("local embed: status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, port.NewProviderError(port.ErrorKindFatal, fmt.Errorf("local embed: status %d", resp.StatusCode))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, port.NewProviderError(port.ErrorKindFatal, err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, port.NewProviderError(port.ErrorKindFatal, fmt.Errorf("local embed: embedding count mismatch"))
	}

	return out.Embeddings, nil
}

// Dimension returns the fixed vector length this client produces.
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// ProviderName returns "local".
func (c *EmbeddingClient) ProviderName() string {
	return "local"
}

var _ port.EmbeddingClient = (*EmbeddingClient)(nil)

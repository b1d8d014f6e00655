// Package openai adapts github.com/sashabaranov/go-openai to the core's
// embedding and chat provider ports.
package openai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// EmbeddingClient implements port.EmbeddingClient against OpenAI's
// embeddings endpoint.
type EmbeddingClient struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
}

// NewEmbeddingClient creates an OpenAI-backed embedding client. dimension
// must match the configured model's output length (1536 for
// text-embedding-3-small / ada-002).
func NewEmbeddingClient(cfg *config.EmbeddingConfig, dimension int) (*EmbeddingClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, errors.New("openai: embedding api key is required")
	}
	return &EmbeddingClient{
		client:    openai.NewClient(cfg.OpenAIAPIKey),
		model:     openai.EmbeddingModel(cfg.OpenAIModel),
		dimension: dimension,
	}, nil
}

// CreateEmbeddings embeds a batch of texts in a single OpenAI call.
func (c *EmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, port.NewProviderError(port.ErrorKindFatal, errors.New("openai: embedding count mismatch"))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Dimension returns the fixed vector length this client produces.
func (c *EmbeddingClient) Dimension() int {
	return c.dimension
}

// ProviderName returns "openai".
func (c *EmbeddingClient) ProviderName() string {
	return "openai"
}

var _ port.EmbeddingClient = (*EmbeddingClient)(nil)

// classifyError normalizes an OpenAI SDK error into a port.ProviderError so
// the retry helper can dispatch on Kind instead of string matching.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return port.NewProviderError(port.ErrorKindRateLimited, err)
		case apiErr.HTTPStatusCode >= 500:
			return port.NewProviderError(port.ErrorKindServerError, err)
		default:
			return port.NewProviderError(port.ErrorKindFatal, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return port.NewProviderError(port.ErrorKindTimeout, err)
	}
	return port.NewProviderError(port.ErrorKindFatal, err)
}

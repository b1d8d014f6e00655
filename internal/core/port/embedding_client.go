package port

import "context"

// EmbeddingClient produces vector embeddings for a batch of text inputs.
// Implementations are provider-specific (OpenAI, a local model server, ...)
// but always return vectors of their fixed Dimension().
type EmbeddingClient interface {
	// CreateEmbeddings embeds up to len(texts) inputs in a single call. The
	// caller is responsible for batching (≤50 per call, per the ingestion
	// pipeline's embed stage).
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the fixed vector length this client produces.
	Dimension() int

	// ProviderName identifies the backing provider, e.g. "openai", "local".
	ProviderName() string
}

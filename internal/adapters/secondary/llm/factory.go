// Package llm provides provider-agnostic constructors for the embedding
// and chat client ports, dispatching to the configured provider.
package llm

import (
	"fmt"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/llm/local"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/llm/openai"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// NewEmbeddingClient constructs the configured embedding provider.
func NewEmbeddingClient(cfg *config.EmbeddingConfig) (port.EmbeddingClient, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.NewEmbeddingClient(cfg, entity.EmbeddingTypeOpenAI.Dimension())
	case "local":
		return local.NewEmbeddingClient(cfg, entity.EmbeddingTypeLocal.Dimension())
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewChatClient constructs the configured chat provider.
func NewChatClient(cfg *config.ChatConfig, prompts *config.PromptTemplates) (port.ChatClient, error) {
	switch cfg.Provider {
	case "openai", "":
		return openai.NewChatClient(cfg, prompts)
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", cfg.Provider)
	}
}

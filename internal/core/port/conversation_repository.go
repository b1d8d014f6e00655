package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// ConversationRepository defines the interface for conversation logging.
type ConversationRepository interface {
	// Create logs a completed (or errored) conversation.
	Create(ctx context.Context, conv *entity.Conversation) error

	// FindByID finds a conversation by ID, used by the rating endpoint.
	FindByID(ctx context.Context, id string) (*entity.Conversation, error)

	// UpdateRating sets a conversation's rating.
	UpdateRating(ctx context.Context, id string, rating int) error
}

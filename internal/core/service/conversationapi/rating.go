// Package conversationapi implements usecase.ConversationUseCase: the
// thumbs up/down/neutral feedback endpoint logged conversations accept
// after the fact.
package conversationapi

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Service implements usecase.ConversationUseCase.
type Service struct {
	conversations port.ConversationRepository
}

// New creates a Service.
func New(conversations port.ConversationRepository) *Service {
	return &Service{conversations: conversations}
}

// Rate implements usecase.ConversationUseCase.
func (s *Service) Rate(ctx context.Context, conversationID string, rating int) error {
	conv, err := s.conversations.FindByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if err := conv.ApplyRating(rating); err != nil {
		return err
	}
	return s.conversations.UpdateRating(ctx, conversationID, rating)
}

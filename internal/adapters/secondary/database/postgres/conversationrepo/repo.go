// Package conversationrepo implements port.ConversationRepository against
// Postgres.
package conversationrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.ConversationRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a conversation Repository.
func New(pool *pgxpool.Pool) port.ConversationRepository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, conv *entity.Conversation) error {
	retrievalMetadata, err := json.Marshal(conv.RetrievalMetadata)
	if err != nil {
		return fmt.Errorf("conversationrepo: create: encode retrieval metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx, queryCreate,
		conv.ID, conv.SessionID, conv.UserID, conv.DocumentSlugs, conv.Question, conv.Answer,
		string(conv.ModelRequested), string(conv.ModelActual), conv.ModelOverrideApplied, retrievalMetadata,
		conv.CreatedAt, conv.CompletedAt, conv.Errored, conv.Rating)
	if err != nil {
		return fmt.Errorf("conversationrepo: create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*entity.Conversation, error) {
	row := r.pool.QueryRow(ctx, queryFindByID, id)

	var conv entity.Conversation
	var modelRequested, modelActual string
	var retrievalMetadataRaw []byte

	if err := row.Scan(
		&conv.ID, &conv.SessionID, &conv.UserID, &conv.DocumentSlugs, &conv.Question, &conv.Answer,
		&modelRequested, &modelActual, &conv.ModelOverrideApplied, &retrievalMetadataRaw,
		&conv.CreatedAt, &conv.CompletedAt, &conv.Errored, &conv.Rating,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversationrepo: find by id: %w", err)
	}

	conv.ModelRequested = entity.ChatModel(modelRequested)
	conv.ModelActual = entity.ChatModel(modelActual)
	if len(retrievalMetadataRaw) > 0 {
		if err := json.Unmarshal(retrievalMetadataRaw, &conv.RetrievalMetadata); err != nil {
			return nil, fmt.Errorf("conversationrepo: decode retrieval metadata: %w", err)
		}
	}
	return &conv, nil
}

func (r *Repository) UpdateRating(ctx context.Context, id string, rating int) error {
	result, err := r.pool.Exec(ctx, queryUpdateRating, id, rating)
	if err != nil {
		return fmt.Errorf("conversationrepo: update rating: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrConversationNotFound
	}
	return nil
}

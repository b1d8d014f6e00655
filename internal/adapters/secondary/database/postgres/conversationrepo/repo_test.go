//go:build integration

package conversationrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/conversationrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestRepository_CreateAndFindByID(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := conversationrepo.New(pool)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	conv := &entity.Conversation{
		ID:                   uuid.NewString(),
		SessionID:            "session-abc",
		DocumentSlugs:        []string{"handbook", "policy"},
		Question:             "what is the vacation policy?",
		Answer:               "employees get 20 days per year.",
		ModelRequested:       entity.ChatModelStandard,
		ModelActual:          entity.ChatModelStandard,
		ModelOverrideApplied: false,
		RetrievalMetadata: entity.RetrievalMetadata{
			ChunkSources: []entity.ChunkSource{{DocumentSlug: "handbook", Ordinal: 3, PageNumber: 2, Similarity: 0.91}},
			Timings:      entity.Timings{EmbedMillis: 12, RetrieveMillis: 34, FirstTokenMillis: 200, TotalMillis: 500},
		},
		CreatedAt:   now,
		CompletedAt: &now,
		Errored:     false,
	}
	require.NoError(t, repo.Create(ctx, conv))
	defer testhelper.CleanupConversation(t, pool, conv.ID)

	found, err := repo.FindByID(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", found.SessionID)
	assert.Equal(t, []string{"handbook", "policy"}, found.DocumentSlugs)
	assert.Equal(t, entity.ChatModelStandard, found.ModelActual)
	require.Len(t, found.RetrievalMetadata.ChunkSources, 1)
	assert.Equal(t, "handbook", found.RetrievalMetadata.ChunkSources[0].DocumentSlug)
	assert.Equal(t, 0.91, found.RetrievalMetadata.ChunkSources[0].Similarity)
	assert.Nil(t, found.Rating)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := conversationrepo.New(pool)

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

func TestRepository_UpdateRating(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := conversationrepo.New(pool)
	ctx := context.Background()

	id := testhelper.CreateTestConversation(t, pool, "session-rating", nil,
		[]string{"doc-a"}, "question", "answer")
	defer testhelper.CleanupConversation(t, pool, id)

	require.NoError(t, repo.UpdateRating(ctx, id, 1))

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found.Rating)
	assert.Equal(t, 1, *found.Rating)
}

func TestRepository_UpdateRating_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := conversationrepo.New(pool)

	err := repo.UpdateRating(context.Background(), uuid.NewString(), -1)
	assert.ErrorIs(t, err, entity.ErrConversationNotFound)
}

//go:build integration

package chunkrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/chunkrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func localVector(lead float32) []float32 {
	v := make([]float32, entity.EmbeddingTypeLocal.Dimension())
	v[0] = lead
	return v
}

func TestRepository_InsertSearchDelete_SingleDocument(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := chunkrepo.New(pool)
	ctx := context.Background()

	slug := testhelper.CreateTestDocument(t, pool, "chunked-"+uuid.NewString()[:8], "Chunked Doc",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeLocal)
	defer testhelper.CleanupDocument(t, pool, slug)

	chunks := []*entity.Chunk{
		{DocumentSlug: slug, Ordinal: 0, Text: "first chunk", Embedding: localVector(1),
			Metadata: entity.ChunkMetadata{PageNumber: 1, CharStart: 0, CharEnd: 11}},
		{DocumentSlug: slug, Ordinal: 1, Text: "second chunk", Embedding: localVector(0.9),
			Metadata: entity.ChunkMetadata{PageNumber: 1, CharStart: 12, CharEnd: 23}},
	}
	require.NoError(t, repo.InsertBatch(ctx, entity.EmbeddingTypeLocal, chunks))

	results, err := repo.SearchSingleDocument(ctx, entity.EmbeddingTypeLocal, slug, localVector(1), 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, slug, results[0].DocumentSlug)
	assert.Equal(t, "Chunked Doc", results[0].DocumentTitle)
	assert.Equal(t, "first chunk", results[0].Text, "closest vector should rank first")

	require.NoError(t, repo.DeleteByDocument(ctx, entity.EmbeddingTypeLocal, slug))
	afterDelete, err := repo.SearchSingleDocument(ctx, entity.EmbeddingTypeLocal, slug, localVector(1), 10)
	require.NoError(t, err)
	assert.Empty(t, afterDelete)
}

func TestRepository_SearchSingleDocument_NoChunks(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := chunkrepo.New(pool)
	ctx := context.Background()

	slug := testhelper.CreateTestDocument(t, pool, "empty-"+uuid.NewString()[:8], "Empty Doc",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeLocal)
	defer testhelper.CleanupDocument(t, pool, slug)

	results, err := repo.SearchSingleDocument(ctx, entity.EmbeddingTypeLocal, slug, localVector(1), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRepository_SearchMultiDocument(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := chunkrepo.New(pool)
	ctx := context.Background()

	slugA := testhelper.CreateTestDocument(t, pool, "multi-a-"+uuid.NewString()[:8], "Doc A",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeLocal)
	defer testhelper.CleanupDocument(t, pool, slugA)
	slugB := testhelper.CreateTestDocument(t, pool, "multi-b-"+uuid.NewString()[:8], "Doc B",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeLocal)
	defer testhelper.CleanupDocument(t, pool, slugB)

	testhelper.CreateTestChunk(t, pool, entity.EmbeddingTypeLocal, slugA, 0, "a chunk", localVector(1))
	testhelper.CreateTestChunk(t, pool, entity.EmbeddingTypeLocal, slugB, 0, "b chunk", localVector(1))

	results, err := repo.SearchMultiDocument(ctx, entity.EmbeddingTypeLocal, []string{slugA, slugB}, localVector(1), 5, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	slugs := map[string]bool{}
	for _, r := range results {
		slugs[r.DocumentSlug] = true
	}
	assert.True(t, slugs[slugA])
	assert.True(t, slugs[slugB])
}

func TestRepository_InsertBatch_OrphanChunkRejected(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := chunkrepo.New(pool)
	ctx := context.Background()

	orphan := []*entity.Chunk{
		{DocumentSlug: "no-such-document-" + uuid.NewString()[:8], Ordinal: 0, Text: "orphan", Embedding: localVector(1)},
	}
	err := repo.InsertBatch(ctx, entity.EmbeddingTypeLocal, orphan)
	assert.ErrorIs(t, err, entity.ErrOrphanChunkInsert)
}

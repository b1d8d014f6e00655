//go:build integration

package documentrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/documentrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestRepository_CreateFindUpdateDelete(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)
	ctx := context.Background()

	slug := "doc-" + uuid.NewString()[:8]
	doc := &entity.Document{
		Slug:          slug,
		Title:         "Employee Handbook",
		Subtitle:      "2026 edition",
		AccessLevel:   entity.AccessLevelPublic,
		EmbeddingType: entity.EmbeddingTypeOpenAI,
		Active:        true,
		Metadata:      map[string]string{"department": "hr"},
		Downloads:     []entity.DownloadLink{{URL: "https://example.com/handbook.pdf", Title: "PDF"}},
	}
	require.NoError(t, repo.Create(ctx, doc))

	found, err := repo.FindBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Employee Handbook", found.Title)
	assert.Equal(t, entity.AccessLevelPublic, found.AccessLevel)
	assert.Equal(t, entity.EmbeddingTypeOpenAI, found.EmbeddingType)
	assert.Equal(t, "hr", found.Metadata["department"])
	require.Len(t, found.Downloads, 1)
	assert.Equal(t, "PDF", found.Downloads[0].Title)

	found.Title = "Employee Handbook (Revised)"
	found.Active = false
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Employee Handbook (Revised)", updated.Title)
	assert.False(t, updated.Active)

	require.NoError(t, repo.Delete(ctx, slug))
	_, err = repo.FindBySlug(ctx, slug)
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestRepository_FindBySlug_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)

	_, err := repo.FindBySlug(context.Background(), "missing-doc")
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestRepository_Update_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)

	err := repo.Update(context.Background(), &entity.Document{
		Slug: "ghost-doc", AccessLevel: entity.AccessLevelPublic, EmbeddingType: entity.EmbeddingTypeOpenAI,
	})
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)

	err := repo.Delete(context.Background(), "ghost-doc")
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)
}

func TestRepository_ListActiveExcludesInactive(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)
	ctx := context.Background()

	activeSlug := testhelper.CreateTestDocument(t, pool, "active-"+uuid.NewString()[:8], "Active",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
	defer testhelper.CleanupDocument(t, pool, activeSlug)

	inactiveSlug := testhelper.CreateTestDocument(t, pool, "inactive-"+uuid.NewString()[:8], "Inactive",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
	defer testhelper.CleanupDocument(t, pool, inactiveSlug)
	inactiveDoc, err := repo.FindBySlug(ctx, inactiveSlug)
	require.NoError(t, err)
	inactiveDoc.Active = false
	require.NoError(t, repo.Update(ctx, inactiveDoc))

	docs, err := repo.ListActive(ctx)
	require.NoError(t, err)

	slugs := make(map[string]bool, len(docs))
	for _, d := range docs {
		slugs[d.Slug] = true
	}
	assert.True(t, slugs[activeSlug])
	assert.False(t, slugs[inactiveSlug])
}

func TestRepository_ListByOwner(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := documentrepo.New(pool)
	ctx := context.Background()

	ownerSlug := testhelper.CreateTestOwner(t, pool, "doc-owner-"+uuid.NewString()[:8], "Doc Owner")
	defer testhelper.CleanupOwner(t, pool, ownerSlug)

	ownedSlug := testhelper.CreateTestDocument(t, pool, "owned-"+uuid.NewString()[:8], "Owned",
		&ownerSlug, entity.AccessLevelOwnerRestricted, entity.EmbeddingTypeOpenAI)
	defer testhelper.CleanupDocument(t, pool, ownedSlug)

	unownedSlug := testhelper.CreateTestDocument(t, pool, "unowned-"+uuid.NewString()[:8], "Unowned",
		nil, entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
	defer testhelper.CleanupDocument(t, pool, unownedSlug)

	docs, err := repo.ListByOwner(ctx, ownerSlug)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, ownedSlug, docs[0].Slug)
}

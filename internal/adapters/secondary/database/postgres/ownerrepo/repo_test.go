//go:build integration

package ownerrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/ownerrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestRepository_CreateFindUpdate(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := ownerrepo.New(pool)
	ctx := context.Background()

	slug := "acme-" + uuid.NewString()[:8]
	owner := &entity.Owner{Slug: slug, Name: "Acme Corp", DefaultChunkLimit: 25}

	require.NoError(t, repo.Create(ctx, owner))
	defer testhelper.CleanupOwner(t, pool, slug)

	found, err := repo.FindBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", found.Name)
	assert.Equal(t, 25, found.DefaultChunkLimit)
	assert.Nil(t, found.CustomHostname)
	assert.Nil(t, found.ForcedModel)

	forced := entity.ChatModelReasoning
	found.Name = "Acme Corporation"
	found.ForcedModel = &forced
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", updated.Name)
	require.NotNil(t, updated.ForcedModel)
	assert.Equal(t, entity.ChatModelReasoning, *updated.ForcedModel)
}

func TestRepository_FindBySlug_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := ownerrepo.New(pool)

	_, err := repo.FindBySlug(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, entity.ErrOwnerNotFound)
}

func TestRepository_FindByHostname(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := ownerrepo.New(pool)
	ctx := context.Background()

	slug := "hostname-owner-" + uuid.NewString()[:8]
	host := slug + ".example.com"
	owner := &entity.Owner{Slug: slug, Name: "Hostname Owner", CustomHostname: &host, DefaultChunkLimit: 50}

	require.NoError(t, repo.Create(ctx, owner))
	defer testhelper.CleanupOwner(t, pool, slug)

	found, err := repo.FindByHostname(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, slug, found.Slug)

	_, err = repo.FindByHostname(ctx, "unregistered.example.com")
	assert.ErrorIs(t, err, entity.ErrOwnerNotFound)
}

func TestRepository_Update_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := ownerrepo.New(pool)

	err := repo.Update(context.Background(), &entity.Owner{Slug: "ghost-owner", Name: "Ghost", DefaultChunkLimit: 10})
	assert.ErrorIs(t, err, entity.ErrOwnerNotFound)
}

func TestRepository_List(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := ownerrepo.New(pool)
	ctx := context.Background()

	slugA := testhelper.CreateTestOwner(t, pool, "list-owner-a-"+uuid.NewString()[:8], "A")
	defer testhelper.CleanupOwner(t, pool, slugA)
	slugB := testhelper.CreateTestOwner(t, pool, "list-owner-b-"+uuid.NewString()[:8], "B")
	defer testhelper.CleanupOwner(t, pool, slugB)

	owners, err := repo.List(ctx)
	require.NoError(t, err)

	slugs := make(map[string]bool, len(owners))
	for _, o := range owners {
		slugs[o.Slug] = true
	}
	assert.True(t, slugs[slugA])
	assert.True(t, slugs[slugB])
}

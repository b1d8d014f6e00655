//go:build integration

package userdocumentrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userdocumentrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestRepository_CreateFindUpdate(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)
	ctx := context.Background()

	user := testhelper.CreateTestUser(t, pool, "ud-owner@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	id := uuid.NewString()
	doc := &entity.UserDocument{
		ID:                   id,
		UserID:               user.ID,
		Title:                "Quarterly Report",
		Status:               entity.UserDocumentStatusPending,
		MimeType:             "application/pdf",
		RequestedAccessLevel: entity.AccessLevelPublic,
	}
	require.NoError(t, repo.Create(ctx, doc))
	defer testhelper.CleanupUserDocument(t, pool, id)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly Report", found.Title)
	assert.Equal(t, entity.UserDocumentStatusPending, found.Status)
	assert.Nil(t, found.DocumentSlug)

	require.NoError(t, found.TransitionTo(entity.UserDocumentStatusProcessing))
	require.NoError(t, repo.Update(ctx, found))

	updated, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.UserDocumentStatusProcessing, updated.Status)

	require.NoError(t, updated.MarkReady("quarterly-report-2026"))
	require.NoError(t, repo.Update(ctx, updated))

	ready, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.UserDocumentStatusReady, ready.Status)
	require.NotNil(t, ready.DocumentSlug)
	assert.Equal(t, "quarterly-report-2026", *ready.DocumentSlug)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrUserDocumentNotFound)
}

func TestRepository_Update_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)

	err := repo.Update(context.Background(), &entity.UserDocument{
		ID: uuid.NewString(), Status: entity.UserDocumentStatusError,
	})
	assert.ErrorIs(t, err, entity.ErrUserDocumentNotFound)
}

func TestRepository_ListByUser(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)
	ctx := context.Background()

	user := testhelper.CreateTestUser(t, pool, "ud-lister@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)
	other := testhelper.CreateTestUser(t, pool, "ud-other@test.com")
	defer testhelper.CleanupUser(t, pool, other.ID)

	mineID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Mine", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, mineID)
	theirsID := testhelper.CreateTestUserDocument(t, pool, other.ID, "Theirs", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, theirsID)

	docs, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, mineID, docs[0].ID)
}

func TestRepository_CompareAndSwapStatus(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)
	ctx := context.Background()

	user := testhelper.CreateTestUser(t, pool, "ud-cas@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	id := testhelper.CreateTestUserDocument(t, pool, user.ID, "CAS Target", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, id)

	swapped, err := repo.CompareAndSwapStatus(ctx, id, entity.UserDocumentStatusProcessing, entity.UserDocumentStatusReady)
	require.NoError(t, err)
	assert.False(t, swapped, "swap should not apply when expected status doesn't match")

	swapped, err = repo.CompareAndSwapStatus(ctx, id, entity.UserDocumentStatusPending, entity.UserDocumentStatusProcessing)
	require.NoError(t, err)
	assert.True(t, swapped)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.UserDocumentStatusProcessing, found.Status)
}

func TestRepository_ListStuck(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)
	ctx := context.Background()

	user := testhelper.CreateTestUser(t, pool, "ud-stuck@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	staleID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Stale", entity.UserDocumentStatusProcessing)
	defer testhelper.CleanupUserDocument(t, pool, staleID)
	_, err := pool.Exec(ctx, "UPDATE user_documents SET updated_at = now() - interval '1 hour' WHERE id = $1", staleID)
	require.NoError(t, err)

	freshID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Fresh", entity.UserDocumentStatusProcessing)
	defer testhelper.CleanupUserDocument(t, pool, freshID)

	stuck, err := repo.ListStuck(ctx, 300, nil)
	require.NoError(t, err)

	ids := make(map[string]bool, len(stuck))
	for _, d := range stuck {
		ids[d.ID] = true
	}
	assert.True(t, ids[staleID])
	assert.False(t, ids[freshID])

	excluded, err := repo.ListStuck(ctx, 300, []string{staleID})
	require.NoError(t, err)
	for _, d := range excluded {
		assert.NotEqual(t, staleID, d.ID)
	}
}

func TestRepository_ListOrphanedBlobs(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userdocumentrepo.New(pool)
	ctx := context.Background()

	user := testhelper.CreateTestUser(t, pool, "ud-orphan@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	orphanID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Orphaned", entity.UserDocumentStatusError)
	defer testhelper.CleanupUserDocument(t, pool, orphanID)
	_, err := pool.Exec(ctx,
		"UPDATE user_documents SET file_path = $1, updated_at = now() - interval '1 hour' WHERE id = $2",
		"uploads/"+orphanID+".pdf", orphanID)
	require.NoError(t, err)

	noBlobID := testhelper.CreateTestUserDocument(t, pool, user.ID, "No Blob", entity.UserDocumentStatusError)
	defer testhelper.CleanupUserDocument(t, pool, noBlobID)
	_, err = pool.Exec(ctx, "UPDATE user_documents SET updated_at = now() - interval '1 hour' WHERE id = $1", noBlobID)
	require.NoError(t, err)

	orphans, err := repo.ListOrphanedBlobs(ctx, 300)
	require.NoError(t, err)

	ids := make(map[string]bool, len(orphans))
	for _, d := range orphans {
		ids[d.ID] = true
	}
	assert.True(t, ids[orphanID])
	assert.False(t, ids[noBlobID])
}

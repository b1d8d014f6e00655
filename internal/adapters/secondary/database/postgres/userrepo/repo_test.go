//go:build integration

package userrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userrepo"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestRepository_UpsertAndFindByID(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userrepo.New(pool)
	ctx := context.Background()

	userID := uuid.NewString()
	require.NoError(t, repo.Upsert(ctx, &entity.User{ID: userID, Email: "first@test.com"}))
	defer testhelper.CleanupUser(t, pool, userID)

	found, err := repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "first@test.com", found.Email)
	assert.Empty(t, found.Roles)
	assert.Empty(t, found.OwnerMemberships)

	require.NoError(t, repo.Upsert(ctx, &entity.User{ID: userID, Email: "changed@test.com"}))
	found, err = repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "changed@test.com", found.Email)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userrepo.New(pool)

	_, err := repo.FindByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}

func TestRepository_RolesGrantRevoke(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userrepo.New(pool)
	ctx := context.Background()

	ownerSlug := testhelper.CreateTestOwner(t, pool, "role-owner-"+uuid.NewString()[:8], "Role Owner")
	defer testhelper.CleanupOwner(t, pool, ownerSlug)

	user := testhelper.CreateTestUser(t, pool, "roled@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	require.NoError(t, repo.GrantRole(ctx, user.ID, entity.Role{Scope: entity.RoleScopeOwnerAdmin, OwnerSlug: &ownerSlug}))
	require.NoError(t, repo.GrantRole(ctx, user.ID, entity.Role{Scope: entity.RoleScopeSuperAdmin}))

	roles, err := repo.ListRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	var sawOwnerAdmin, sawSuperAdmin bool
	for _, role := range roles {
		switch role.Scope {
		case entity.RoleScopeOwnerAdmin:
			sawOwnerAdmin = true
			require.NotNil(t, role.OwnerSlug)
			assert.Equal(t, ownerSlug, *role.OwnerSlug)
		case entity.RoleScopeSuperAdmin:
			sawSuperAdmin = true
			assert.Nil(t, role.OwnerSlug)
		}
	}
	assert.True(t, sawOwnerAdmin)
	assert.True(t, sawSuperAdmin)

	require.NoError(t, repo.RevokeRole(ctx, user.ID, entity.Role{Scope: entity.RoleScopeSuperAdmin}))
	roles, err = repo.ListRoles(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestRepository_MembershipAndIsMember(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	repo := userrepo.New(pool)
	ctx := context.Background()

	ownerSlug := testhelper.CreateTestOwner(t, pool, "member-owner-"+uuid.NewString()[:8], "Member Owner")
	defer testhelper.CleanupOwner(t, pool, ownerSlug)

	user := testhelper.CreateTestUser(t, pool, "member@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	isMember, err := repo.IsMember(ctx, user.ID, ownerSlug)
	require.NoError(t, err)
	assert.False(t, isMember)

	require.NoError(t, repo.AddMember(ctx, user.ID, ownerSlug))

	isMember, err = repo.IsMember(ctx, user.ID, ownerSlug)
	require.NoError(t, err)
	assert.True(t, isMember)

	slugs, err := repo.ListOwnerSlugsForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, slugs, ownerSlug)

	require.NoError(t, repo.RemoveMember(ctx, user.ID, ownerSlug))
	isMember, err = repo.IsMember(ctx, user.ID, ownerSlug)
	require.NoError(t, err)
	assert.False(t, isMember)
}

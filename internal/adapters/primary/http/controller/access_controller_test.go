//go:build integration

package controller_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestAccessController_CheckAccess(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	t.Run("public document is allowed anonymously", func(t *testing.T) {
		slug := testhelper.CreateTestDocument(t, pool, "public-doc", "Public Doc", nil,
			entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
		defer testhelper.CleanupDocument(t, pool, slug)

		resp, _ := client.POST("/api/v1/refresh-registry", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := client.POST("/api/v1/check-access", dto.CheckAccessRequest{DocumentSlug: slug})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := testhelper.ParseJSON[dto.CheckAccessResponse](t, body)
		assert.True(t, result.Allowed)
	})

	t.Run("passcode document denies without a matching passcode", func(t *testing.T) {
		slug := testhelper.CreateTestDocument(t, pool, "passcode-doc", "Passcode Doc", nil,
			entity.AccessLevelPasscode, entity.EmbeddingTypeOpenAI)
		_, err := pool.Exec(context.Background(), "UPDATE documents SET passcode = $1 WHERE slug = $2", "s3cr3t", slug)
		require.NoError(t, err)
		defer testhelper.CleanupDocument(t, pool, slug)

		resp, _ := client.POST("/api/v1/refresh-registry", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := client.POST("/api/v1/check-access", dto.CheckAccessRequest{DocumentSlug: slug})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := testhelper.ParseJSON[dto.CheckAccessResponse](t, body)
		assert.False(t, result.Allowed)
		assert.Equal(t, string(entity.DenyReasonPasscode), result.Reason)

		resp, body = client.POST("/api/v1/check-access",
			dto.CheckAccessRequest{DocumentSlug: slug, Passcode: testhelper.Ptr("s3cr3t")})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result = testhelper.ParseJSON[dto.CheckAccessResponse](t, body)
		assert.True(t, result.Allowed)
	})

	t.Run("owner restricted document is forbidden to a non-member", func(t *testing.T) {
		ownerSlug := testhelper.CreateTestOwner(t, pool, "acme", "Acme Corp")
		defer testhelper.CleanupOwner(t, pool, ownerSlug)

		slug := testhelper.CreateTestDocument(t, pool, "restricted-doc", "Restricted Doc", &ownerSlug,
			entity.AccessLevelOwnerRestricted, entity.EmbeddingTypeOpenAI)
		defer testhelper.CleanupDocument(t, pool, slug)

		resp, _ := client.POST("/api/v1/refresh-registry", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		user := testhelper.CreateTestUser(t, pool, "outsider@test.com")
		defer testhelper.CleanupUser(t, pool, user.ID)

		resp, body := client.WithAuth(user.BearerHeader).POST("/api/v1/check-access",
			dto.CheckAccessRequest{DocumentSlug: slug})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := testhelper.ParseJSON[dto.CheckAccessResponse](t, body)
		assert.False(t, result.Allowed)
		assert.Equal(t, string(entity.DenyReasonForbidden), result.Reason)

		testhelper.AddTestOwnerMember(t, pool, user.ID, ownerSlug)

		resp, body = client.WithAuth(user.BearerHeader).POST("/api/v1/check-access",
			dto.CheckAccessRequest{DocumentSlug: slug})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result = testhelper.ParseJSON[dto.CheckAccessResponse](t, body)
		assert.True(t, result.Allowed)
	})

	t.Run("unknown document slug returns not found", func(t *testing.T) {
		resp, body := client.POST("/api/v1/check-access", dto.CheckAccessRequest{DocumentSlug: "does-not-exist"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		errResp := testhelper.ParseJSON[dto.ErrorResponse](t, body)
		assert.Equal(t, "NotFound", errResp.ErrorKind)
	})

	t.Run("missing document slug is a bad request", func(t *testing.T) {
		resp, _ := client.POST("/api/v1/check-access", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

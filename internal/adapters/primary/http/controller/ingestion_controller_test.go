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

func TestIngestionController_RequiresAuth(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	resp, _ := client.GET("/api/v1/user-documents")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = client.POST("/api/v1/process-document", dto.ProcessDocumentRequest{UserDocumentID: "whatever"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIngestionController_ListUserDocuments(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	user := testhelper.CreateTestUser(t, pool, "uploader@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	resp, body := client.WithAuth(user.BearerHeader).GET("/api/v1/user-documents")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docs := testhelper.ParseJSON[[]dto.UserDocumentResponse](t, body)
	assert.Empty(t, docs)

	udID := testhelper.CreateTestUserDocument(t, pool, user.ID, "My Upload", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, udID)

	resp, body = client.WithAuth(user.BearerHeader).GET("/api/v1/user-documents")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	docs = testhelper.ParseJSON[[]dto.UserDocumentResponse](t, body)
	require.Len(t, docs, 1)
	assert.Equal(t, "My Upload", docs[0].Title)
	assert.Equal(t, string(entity.UserDocumentStatusPending), docs[0].Status)
}

func TestIngestionController_ProcessingStatus(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	owner := testhelper.CreateTestUser(t, pool, "status-owner@test.com")
	defer testhelper.CleanupUser(t, pool, owner.ID)
	other := testhelper.CreateTestUser(t, pool, "status-other@test.com")
	defer testhelper.CleanupUser(t, pool, other.ID)

	udID := testhelper.CreateTestUserDocument(t, pool, owner.ID, "Status Doc", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, udID)

	resp, body := client.WithAuth(owner.BearerHeader).GET("/api/v1/processing-status/" + udID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := testhelper.ParseJSON[dto.ProcessingStatusResponse](t, body)
	assert.Equal(t, udID, status.UserDocument.ID)

	resp, _ = client.WithAuth(other.BearerHeader).GET("/api/v1/processing-status/" + udID)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = client.WithAuth(owner.BearerHeader).GET("/api/v1/processing-status/00000000-0000-0000-0000-000000000000")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIngestionController_DownloadURL(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	user := testhelper.CreateTestUser(t, pool, "downloader@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	udID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Downloadable", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, udID)

	t.Run("no blob on record is gone", func(t *testing.T) {
		resp, _ := client.WithAuth(user.BearerHeader).GET("/api/v1/user-documents/" + udID + "/download-url")
		assert.Equal(t, http.StatusGone, resp.StatusCode)
	})

	t.Run("a recorded blob resolves to a URL", func(t *testing.T) {
		_, err := pool.Exec(context.Background(),
			"UPDATE user_documents SET file_path = $1 WHERE id = $2", "uploads/"+udID+".pdf", udID)
		require.NoError(t, err)

		resp, body := client.WithAuth(user.BearerHeader).GET("/api/v1/user-documents/" + udID + "/download-url")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := testhelper.ParseJSON[dto.DownloadURLResponse](t, body)
		assert.NotEmpty(t, result.URL)
	})
}

func TestIngestionController_ForceRetry(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	user := testhelper.CreateTestUser(t, pool, "retry-user@test.com")
	defer testhelper.CleanupUser(t, pool, user.ID)

	udID := testhelper.CreateTestUserDocument(t, pool, user.ID, "Not Stuck", entity.UserDocumentStatusPending)
	defer testhelper.CleanupUserDocument(t, pool, udID)

	resp, body := client.WithAuth(user.BearerHeader).POST("/api/v1/user-documents/"+udID+"/force-retry", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	errResp := testhelper.ParseJSON[dto.ErrorResponse](t, body)
	assert.Equal(t, "Conflict", errResp.ErrorKind)
}

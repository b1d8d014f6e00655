//go:build integration

package controller_test

import (
	"bufio"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestQueryController_Chat(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	t.Run("answers over a public document with no matching chunks", func(t *testing.T) {
		slug := testhelper.CreateTestDocument(t, pool, "chat-doc", "Chat Doc", nil,
			entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
		defer testhelper.CleanupDocument(t, pool, slug)

		resp, _ := client.POST("/api/v1/refresh-registry", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := client.POST("/api/v1/chat", dto.ChatRequest{Message: "what does this say?", Doc: slug})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := testhelper.ParseJSON[dto.ChatResponse](t, body)
		assert.NotEmpty(t, result.Response)
		assert.NotEmpty(t, result.ConversationID)
		assert.Equal(t, 0, result.Metadata.ChunksUsed)
	})

	t.Run("registered document denies an anonymous caller", func(t *testing.T) {
		slug := testhelper.CreateTestDocument(t, pool, "registered-doc", "Registered Doc", nil,
			entity.AccessLevelRegistered, entity.EmbeddingTypeOpenAI)
		defer testhelper.CleanupDocument(t, pool, slug)

		resp, _ := client.POST("/api/v1/refresh-registry", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, body := client.POST("/api/v1/chat", dto.ChatRequest{Message: "hello?", Doc: slug})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		errResp := testhelper.ParseJSON[dto.ErrorResponse](t, body)
		assert.Equal(t, "Unauthorized", errResp.ErrorKind)
		assert.Equal(t, string(entity.DenyReasonRegistered), errResp.Reason)
	})

	t.Run("more than five documents is a bad request", func(t *testing.T) {
		doc := "six+docs+requested+in+one+query"
		resp, _ := client.POST("/api/v1/chat", dto.ChatRequest{Message: "hi", Doc: doc})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown document slug is not found", func(t *testing.T) {
		resp, _ := client.POST("/api/v1/chat", dto.ChatRequest{Message: "hi", Doc: "does-not-exist"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("missing message is a bad request", func(t *testing.T) {
		resp, _ := client.POST("/api/v1/chat", map[string]string{"doc": "whatever"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestQueryController_ChatStream(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	slug := testhelper.CreateTestDocument(t, pool, "chat-stream-doc", "Chat Stream Doc", nil,
		entity.AccessLevelPublic, entity.EmbeddingTypeOpenAI)
	defer testhelper.CleanupDocument(t, pool, slug)

	resp, _ := client.POST("/api/v1/refresh-registry", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := client.POST("/api/v1/chat/stream", dto.ChatRequest{Message: "summarize this", Doc: slug})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(strings.NewReader(string(body)))
	var sawContent, sawDone bool
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: content") {
			sawContent = true
		}
		if strings.HasPrefix(line, "event: done") {
			sawDone = true
		}
	}
	assert.True(t, sawContent, "expected a content event in the SSE stream")
	assert.True(t, sawDone, "expected a done event in the SSE stream")
}

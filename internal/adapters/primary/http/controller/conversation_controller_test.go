//go:build integration

package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/testing/testhelper"
)

func TestConversationController_Rate(t *testing.T) {
	pool := testhelper.GetTestPool(t)
	ts := testhelper.NewTestServer(t, pool)
	client := testhelper.NewHTTPClient(t, ts.URL())

	t.Run("rates an existing conversation", func(t *testing.T) {
		convID := testhelper.CreateTestConversation(t, pool, "session-1", nil,
			[]string{"some-doc"}, "what is this about?", "an answer")
		defer testhelper.CleanupConversation(t, pool, convID)

		resp, _ := client.POST("/api/v1/conversations/"+convID+"/rating", dto.RatingRequest{Rating: 1})
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("unknown conversation id is not found", func(t *testing.T) {
		resp, body := client.POST("/api/v1/conversations/00000000-0000-0000-0000-000000000000/rating",
			dto.RatingRequest{Rating: -1})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)

		errResp := testhelper.ParseJSON[dto.ErrorResponse](t, body)
		assert.Equal(t, "NotFound", errResp.ErrorKind)
	})
}

package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// ConversationController handles post-hoc feedback on logged conversations.
type ConversationController struct {
	conversations usecase.ConversationUseCase
}

// NewConversationController creates a ConversationController.
func NewConversationController(conversations usecase.ConversationUseCase) *ConversationController {
	return &ConversationController{conversations: conversations}
}

// RegisterRoutes registers the conversation routes.
func (c *ConversationController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversations/:id/rating", c.Rate)
}

// Rate records a thumbs up/down/neutral rating against a logged
// conversation.
// @Summary Rate a conversation
// @Tags Conversation
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body dto.RatingRequest true "Rating"
// @Success 204 "No Content"
// @Failure 404 {object} dto.ErrorResponse
// @Router /conversations/{id}/rating [post]
func (c *ConversationController) Rate(ctx *gin.Context) {
	var req dto.RatingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrRequiredField))
		return
	}

	if err := c.conversations.Rate(ctx.Request.Context(), ctx.Param("id"), req.Rating); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

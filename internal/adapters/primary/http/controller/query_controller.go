package controller

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/middleware"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// QueryController handles the grounded-answer endpoints.
type QueryController struct {
	query usecase.QueryUseCase
}

// NewQueryController creates a QueryController.
func NewQueryController(query usecase.QueryUseCase) *QueryController {
	return &QueryController{query: query}
}

// RegisterRoutes registers the query routes.
func (c *QueryController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", c.Chat)
	rg.POST("/chat/stream", c.ChatStream)
}

func (c *QueryController) buildCommand(ctx *gin.Context) (usecase.AnswerCommand, bool) {
	var req dto.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrRequiredField))
		return usecase.AnswerCommand{}, false
	}

	slugs := req.DocumentSlugs()
	if len(slugs) == 0 || slugs[0] == "" {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrNoDocumentsRequested))
		return usecase.AnswerCommand{}, false
	}
	if len(slugs) > 5 {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrTooManyDocuments))
		return usecase.AnswerCommand{}, false
	}

	user, _ := middleware.GetIdentity(ctx)
	return usecase.AnswerCommand{
		User:           user,
		Question:       req.Message,
		History:        req.ChatHistory(),
		DocumentSlugs:  slugs,
		RequestedModel: req.ChatModel(),
		SessionID:      req.SessionID,
	}, true
}

// Chat answers a grounded question over one or more documents, returning
// the complete answer as a single JSON response.
// @Summary Ask a grounded question (buffered JSON response)
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.ChatRequest true "Question and target documents"
// @Success 200 {object} dto.ChatResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /chat [post]
func (c *QueryController) Chat(ctx *gin.Context) {
	cmd, ok := c.buildCommand(ctx)
	if !ok {
		return
	}

	events, handle, err := c.query.Answer(ctx.Request.Context(), cmd)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	var answer strings.Builder
	var streamErr error
	for event := range events {
		switch event.Kind {
		case port.StreamEventContent:
			answer.WriteString(event.Content)
		case port.StreamEventError:
			streamErr = event.Err
		}
	}
	if streamErr != nil {
		HandleError(ctx, streamErr)
		return
	}

	meta := handle.Wait()
	ctx.JSON(http.StatusOK, dto.NewChatResponse(answer.String(), meta))
}

// ChatStream answers a grounded question, streaming the answer as
// Server-Sent Events: `content` for incremental text, `done` for the
// final metadata, `error` as a terminal event on failure.
// @Summary Ask a grounded question (Server-Sent Events)
// @Tags Query
// @Accept json
// @Produce text/event-stream
// @Param request body dto.ChatRequest true "Question and target documents"
// @Success 200 {string} string "text/event-stream"
// @Router /chat/stream [post]
func (c *QueryController) ChatStream(ctx *gin.Context) {
	cmd, ok := c.buildCommand(ctx)
	if !ok {
		return
	}

	events, handle, err := c.query.Answer(ctx.Request.Context(), cmd)
	if err != nil {
		HandleError(ctx, err)
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache, no-store")
	ctx.Header("Connection", "keep-alive")

	ctx.Stream(func(w io.Writer) bool {
		event, ok := <-events
		if !ok {
			return false
		}
		switch event.Kind {
		case port.StreamEventContent:
			ctx.SSEvent("content", gin.H{"text": event.Content})
		case port.StreamEventError:
			ctx.SSEvent("error", dto.NewErrorResponse(event.Err))
		case port.StreamEventDone:
			meta := handle.Wait()
			ctx.SSEvent("done", dto.NewChatResponse("", meta).Metadata)
		}
		return true
	})
}

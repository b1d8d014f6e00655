package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/middleware"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// IngestionController handles the upload-processing lifecycle endpoints.
type IngestionController struct {
	ingestion usecase.IngestionUseCase
	userDocs  usecase.UserDocumentUseCase
}

// NewIngestionController creates an IngestionController.
func NewIngestionController(ingestion usecase.IngestionUseCase, userDocs usecase.UserDocumentUseCase) *IngestionController {
	return &IngestionController{ingestion: ingestion, userDocs: userDocs}
}

// RegisterRoutes registers the ingestion routes.
func (c *IngestionController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/process-document", c.ProcessDocument)
	rg.POST("/retrain-document", c.RetrainDocument)
	rg.POST("/user-documents/:id/force-retry", c.ForceRetry)
	rg.GET("/processing-status/:id", c.ProcessingStatus)
	rg.GET("/user-documents", c.ListUserDocuments)
	rg.GET("/user-documents/:id/download-url", c.DownloadURL)
}

// ProcessDocument admits a pending user document into the ingestion
// pipeline.
// @Summary Admit an uploaded document for processing
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param request body dto.ProcessDocumentRequest true "User document to process"
// @Success 202 {object} dto.AcceptedResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /process-document [post]
func (c *IngestionController) ProcessDocument(ctx *gin.Context) {
	c.admit(ctx, c.ingestion.Ingest)
}

// RetrainDocument re-admits an already-ingested document, preserving its
// slug and atomically swapping its chunks on success.
// @Summary Re-process an already-ingested document
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param request body dto.ProcessDocumentRequest true "User document to retrain"
// @Success 202 {object} dto.AcceptedResponse
// @Router /retrain-document [post]
func (c *IngestionController) RetrainDocument(ctx *gin.Context) {
	c.admit(ctx, c.ingestion.Retrain)
}

// ForceRetry clears a stuck processing row back to pending and re-admits
// it.
// @Summary Force-retry a stuck processing job
// @Tags Ingestion
// @Produce json
// @Param id path string true "User document ID"
// @Success 202 {object} dto.AcceptedResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /user-documents/{id}/force-retry [post]
func (c *IngestionController) ForceRetry(ctx *gin.Context) {
	user, _ := middleware.GetIdentity(ctx)
	result, err := c.ingestion.ForceRetry(ctx.Request.Context(), usecase.IngestCommand{
		UserDocumentID: ctx.Param("id"),
		User:           user,
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: result.Status})
}

func (c *IngestionController) admit(ctx *gin.Context, fn func(ctx context.Context, cmd usecase.IngestCommand) (usecase.IngestAcceptedResult, error)) {
	var req dto.ProcessDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrRequiredField))
		return
	}

	user, _ := middleware.GetIdentity(ctx)
	result, err := fn(ctx.Request.Context(), usecase.IngestCommand{
		UserDocumentID: req.UserDocumentID,
		User:           user,
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, dto.AcceptedResponse{Status: result.Status})
}

// ProcessingStatus returns a user document's current row and the tail of
// its processing log.
// @Summary Get ingestion processing status
// @Tags Ingestion
// @Produce json
// @Param id path string true "User document ID"
// @Success 200 {object} dto.ProcessingStatusResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /processing-status/{id} [get]
func (c *IngestionController) ProcessingStatus(ctx *gin.Context) {
	user, _ := middleware.GetIdentity(ctx)
	result, err := c.userDocs.GetStatus(ctx.Request.Context(), ctx.Param("id"), user)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewProcessingStatusResponse(result))
}

// ListUserDocuments lists the caller's uploaded documents.
// @Summary List my uploaded documents
// @Tags Ingestion
// @Produce json
// @Success 200 {array} dto.UserDocumentResponse
// @Router /user-documents [get]
func (c *IngestionController) ListUserDocuments(ctx *gin.Context) {
	user, _ := middleware.GetIdentity(ctx)
	docs, err := c.userDocs.ListMine(ctx.Request.Context(), user)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	responses := make([]dto.UserDocumentResponse, len(docs))
	for i, d := range docs {
		responses[i] = dto.NewUserDocumentResponse(d)
	}
	ctx.JSON(http.StatusOK, responses)
}

// DownloadURL returns a signed URL to the original uploaded source.
// @Summary Get a signed download URL for an uploaded source
// @Tags Ingestion
// @Produce json
// @Param id path string true "User document ID"
// @Success 200 {object} dto.DownloadURLResponse
// @Failure 410 {object} dto.ErrorResponse
// @Router /user-documents/{id}/download-url [get]
func (c *IngestionController) DownloadURL(ctx *gin.Context) {
	user, _ := middleware.GetIdentity(ctx)
	url, err := c.userDocs.GetDownloadURL(ctx.Request.Context(), ctx.Param("id"), user)
	if err != nil {
		if errors.Is(err, entity.ErrFilePurged) {
			ctx.JSON(http.StatusGone, dto.NewErrorResponse(err))
			return
		}
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.DownloadURLResponse{URL: url})
}

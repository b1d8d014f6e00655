package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/middleware"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// AccessController handles the standalone passcode-probe endpoint, so a
// client can test a passcode before submitting a full query.
type AccessController struct {
	access usecase.AccessUseCase
}

// NewAccessController creates an AccessController.
func NewAccessController(access usecase.AccessUseCase) *AccessController {
	return &AccessController{access: access}
}

// RegisterRoutes registers the access routes.
func (c *AccessController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/check-access", c.CheckAccess)
}

// CheckAccess reports whether the caller (with an optional passcode) may
// query the given document, without running a query.
// @Summary Probe document access
// @Tags Access
// @Accept json
// @Produce json
// @Param request body dto.CheckAccessRequest true "Document and optional passcode"
// @Success 200 {object} dto.CheckAccessResponse
// @Router /check-access [post]
func (c *AccessController) CheckAccess(ctx *gin.Context) {
	var req dto.CheckAccessRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(entity.ErrRequiredField))
		return
	}

	user, _ := middleware.GetIdentity(ctx)
	result, err := c.access.CheckAccess(ctx.Request.Context(), usecase.AccessCheckCommand{
		User:         user,
		DocumentSlug: req.DocumentSlug,
		Passcode:     req.Passcode,
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.CheckAccessResponse{Allowed: result.Allowed, Reason: string(result.Reason)})
}

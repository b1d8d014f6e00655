package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// RegistryController handles the document+owner snapshot refresh and the
// liveness/readiness probes.
type RegistryController struct {
	registry usecase.RegistryUseCase
}

// NewRegistryController creates a RegistryController.
func NewRegistryController(registry usecase.RegistryUseCase) *RegistryController {
	return &RegistryController{registry: registry}
}

// RegisterRoutes registers the registry and probe routes.
func (c *RegistryController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/refresh-registry", c.Refresh)
	rg.GET("/health", c.Health)
	rg.GET("/ready", c.Ready)
}

// Refresh forces an immediate reload of the document+owner snapshot.
// @Summary Force a registry refresh
// @Tags Registry
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Router /refresh-registry [post]
func (c *RegistryController) Refresh(ctx *gin.Context) {
	result, err := c.registry.Refresh(ctx.Request.Context())
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.RefreshResponse{OK: true, DocumentCount: result.DocumentCount})
}

// Health reports registry freshness and concurrency load.
// @Summary Report service health
// @Tags Registry
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (c *RegistryController) Health(ctx *gin.Context) {
	status := c.registry.Health(ctx.Request.Context())
	ctx.JSON(http.StatusOK, dto.NewHealthResponse(status))
}

// Ready reports whether the service is ready to serve queries.
// @Summary Report readiness
// @Tags Registry
// @Produce json
// @Success 200 {object} dto.AcceptedResponse
// @Failure 503 {object} dto.AcceptedResponse
// @Router /ready [get]
func (c *RegistryController) Ready(ctx *gin.Context) {
	if !c.registry.Ready(ctx.Request.Context()) {
		ctx.JSON(http.StatusServiceUnavailable, dto.AcceptedResponse{Status: "not ready"})
		return
	}
	ctx.JSON(http.StatusOK, dto.AcceptedResponse{Status: "ready"})
}

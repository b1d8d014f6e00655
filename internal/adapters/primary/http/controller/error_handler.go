package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/dto"
	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// respondError sends an error response.
func respondError(ctx *gin.Context, statusCode int, err error) {
	ctx.JSON(statusCode, dto.NewErrorResponse(err))
}

// HandleError maps a domain error to its HTTP status code and the stable
// error_kind/reason envelope §7 requires, and writes the response.
func HandleError(ctx *gin.Context, err error) {
	resp := dto.NewErrorResponse(err)

	var statusCode int
	switch resp.ErrorKind {
	case "NotFound":
		statusCode = http.StatusNotFound
	case "Unauthorized":
		if errors.Is(err, entity.ErrMissingToken) || errors.Is(err, entity.ErrInvalidToken) || errors.Is(err, entity.ErrTokenExpired) {
			statusCode = http.StatusUnauthorized
		} else {
			statusCode = http.StatusForbidden
		}
	case "BadRequest":
		statusCode = http.StatusBadRequest
	case "Busy":
		statusCode = http.StatusServiceUnavailable
	case "Conflict":
		statusCode = http.StatusConflict
	case "Provider":
		statusCode = http.StatusBadGateway
	case "Timeout":
		statusCode = http.StatusGatewayTimeout
	default:
		statusCode = http.StatusInternalServerError
		slog.ErrorContext(ctx.Request.Context(), "unhandled error", slog.String("error", err.Error()))
	}

	ctx.JSON(statusCode, resp)
}

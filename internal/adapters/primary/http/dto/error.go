// Package dto holds the request/response shapes of the HTTP boundary,
// kept separate from core entities so the wire format can evolve (or grow
// API-versioning quirks) without touching domain types.
package dto

import (
	"errors"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// ErrorResponse is the stable, categorical error envelope every endpoint
// returns on failure (§7's error taxonomy). Reason is only populated for
// Unauthorized responses, carrying the access resolver's categorical deny
// reason without disclosing document existence beyond the slug the caller
// already supplied.
type ErrorResponse struct {
	ErrorKind  string `json:"error_kind"`
	Message    string `json:"message"`
	Reason     string `json:"reason,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// NewErrorResponse classifies err into the stable error taxonomy.
func NewErrorResponse(err error) ErrorResponse {
	kind, reason := classify(err)
	return ErrorResponse{
		ErrorKind: kind,
		Message:   err.Error(),
		Reason:    reason,
	}
}

// NewBusyResponse builds the admission-denied response carrying the
// client's suggested retry delay in seconds.
func NewBusyResponse(retryAfterSeconds int) ErrorResponse {
	return ErrorResponse{
		ErrorKind:  "Busy",
		Message:    entity.ErrBusy.Error(),
		RetryAfter: retryAfterSeconds,
	}
}

func classify(err error) (kind, reason string) {
	var accessDenied *entity.AccessDeniedError
	if errors.As(err, &accessDenied) {
		return "Unauthorized", string(accessDenied.Reason)
	}

	switch {
	case errors.Is(err, entity.ErrOwnerNotFound),
		errors.Is(err, entity.ErrDocumentNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, entity.ErrUserDocumentNotFound),
		errors.Is(err, entity.ErrChunkNotFound),
		errors.Is(err, entity.ErrConversationNotFound):
		return "NotFound", ""

	case errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrMissingToken),
		errors.Is(err, entity.ErrInvalidToken),
		errors.Is(err, entity.ErrTokenExpired):
		return "Unauthorized", ""

	case errors.Is(err, entity.ErrForbidden),
		errors.Is(err, entity.ErrInactiveDocument):
		return "Unauthorized", string(entity.DenyReasonForbidden)

	case errors.Is(err, entity.ErrPasscodeRequired):
		return "Unauthorized", string(entity.DenyReasonPasscode)

	case errors.Is(err, entity.ErrRequiredField),
		errors.Is(err, entity.ErrFieldTooLong),
		errors.Is(err, entity.ErrInvalidSlug),
		errors.Is(err, entity.ErrTooManyDocuments),
		errors.Is(err, entity.ErrNoDocumentsRequested),
		errors.Is(err, entity.ErrMixedOwners),
		errors.Is(err, entity.ErrUnknownModel),
		errors.Is(err, entity.ErrInvalidChunkLimit),
		errors.Is(err, entity.ErrEmptyUpload),
		errors.Is(err, entity.ErrUnsupportedMimeType):
		return "BadRequest", ""

	case errors.Is(err, entity.ErrBusy):
		return "Busy", ""

	case errors.Is(err, entity.ErrAlreadyProcessing),
		errors.Is(err, entity.ErrNotStuck):
		return "Conflict", ""

	case errors.Is(err, entity.ErrProviderUnavailable):
		return "Provider", ""

	case errors.Is(err, entity.ErrProviderTimeout),
		errors.Is(err, entity.ErrHardTimeout):
		return "Timeout", ""

	case errors.Is(err, entity.ErrFilePurged):
		return "NotFound", ""

	default:
		return "Internal", ""
	}
}

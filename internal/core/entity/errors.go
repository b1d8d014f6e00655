package entity

import (
	"errors"
	"fmt"
)

// Authentication and access errors.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("access denied")
	ErrMissingToken     = errors.New("missing authorization token")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrInactiveDocument = errors.New("document is inactive")
	ErrPasscodeRequired = errors.New("passcode required or incorrect")
)

// Not-found errors.
var (
	ErrOwnerNotFound        = errors.New("owner not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserDocumentNotFound = errors.New("user document not found")
	ErrChunkNotFound        = errors.New("chunk not found")
	ErrConversationNotFound = errors.New("conversation not found")
)

// Gone errors — the resource existed but is no longer retrievable.
var (
	ErrFilePurged = errors.New("source file was purged after ingestion")
)

// Validation / bad-request errors.
var (
	ErrRequiredField        = errors.New("required field is missing")
	ErrFieldTooLong         = errors.New("field exceeds maximum length")
	ErrInvalidSlug          = errors.New("invalid slug")
	ErrTooManyDocuments     = errors.New("too many documents requested")
	ErrNoDocumentsRequested = errors.New("no documents requested")
	ErrMixedOwners          = errors.New("documents belong to different owners")
	ErrMixedEmbeddingTypes  = errors.New("documents use incompatible embedding types")
	ErrUnknownModel         = errors.New("unknown chat model")
	ErrInvalidChunkLimit    = errors.New("chunk limit out of range")
	ErrEmptyUpload          = errors.New("uploaded content is empty")
	ErrUnsupportedMimeType  = errors.New("unsupported mime type")
)

// State / conflict errors.
var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyProcessing       = errors.New("document is already processing")
	ErrNotStuck                = errors.New("document is not stuck")
	ErrOrphanChunkInsert       = errors.New("cannot insert chunk without parent document")
)

// Admission / concurrency errors.
var (
	ErrBusy = errors.New("processing capacity exhausted")
)

// Provider / timeout errors.
var (
	ErrProviderUnavailable = errors.New("upstream provider error")
	ErrProviderTimeout     = errors.New("upstream provider timed out")
	ErrHardTimeout         = errors.New("operation exceeded hard timeout")
)

// Internal / unclassified errors.
var (
	ErrInternal = errors.New("internal error")
)

// AccessDeniedError reports which document in a multi-document query
// denied access and why, so the HTTP layer can surface the categorical
// deny reason §4.6 step 2 requires instead of a bare 403.
type AccessDeniedError struct {
	DocumentSlug string
	Reason       DenyReason
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied to document %q: %s", e.DocumentSlug, e.Reason)
}

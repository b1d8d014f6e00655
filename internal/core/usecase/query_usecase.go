package usecase

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// AnswerCommand requests a grounded, streamed answer over one or more
// documents.
type AnswerCommand struct {
	User            *entity.User
	Question        string
	History         []port.ChatMessage
	DocumentSlugs    []string
	RequestedModel  entity.ChatModel
	SessionID       string
}

// AnswerMetadata is the final `done` event payload: everything about how
// the answer was produced, for both the HTTP JSON response and the SSE
// `done` event.
type AnswerMetadata struct {
	ConversationID       string
	SessionID            string
	ModelRequested       entity.ChatModel
	ModelActual          entity.ChatModel
	ModelOverrideApplied bool
	ChunksUsed           int
	ChunkSources         []entity.ChunkSource
	ExcludedDocuments    []string
	Timings              entity.Timings
}

// QueryUseCase defines the input port for the RAG orchestrator (C7). Both
// /chat and /chat/stream route through Answer; the JSON endpoint drains the
// event channel itself and assembles a single response, the SSE endpoint
// adapts events directly.
type QueryUseCase interface {
	// Answer resolves access, retrieves context, and streams a grounded
	// completion. The returned channel emits StreamEventContent events
	// followed by exactly one StreamEventDone or StreamEventError.
	Answer(ctx context.Context, cmd AnswerCommand) (<-chan port.StreamEvent, *AnswerMetadataHandle, error)
}

// AnswerMetadataHandle is populated once the stream finishes (Done or
// Error); callers read it only after draining the event channel.
type AnswerMetadataHandle struct {
	result chan AnswerMetadata
}

// NewAnswerMetadataHandle creates an unresolved handle.
func NewAnswerMetadataHandle() *AnswerMetadataHandle {
	return &AnswerMetadataHandle{result: make(chan AnswerMetadata, 1)}
}

// Resolve is called by the orchestrator once after the stream completes.
func (h *AnswerMetadataHandle) Resolve(meta AnswerMetadata) {
	h.result <- meta
	close(h.result)
}

// Wait blocks until Resolve has been called, returning the final metadata.
// Callers must drain the event channel first so Resolve has already run.
func (h *AnswerMetadataHandle) Wait() AnswerMetadata {
	return <-h.result
}

// AccessCheckCommand probes whether a passcode prompt is needed before a
// query is submitted, per the standalone /check-access endpoint.
type AccessCheckCommand struct {
	User         *entity.User
	DocumentSlug string
	Passcode     *string
}

// AccessCheckResult is the outcome of an access check.
type AccessCheckResult struct {
	Allowed bool
	Reason  entity.DenyReason
}

// AccessUseCase defines the input port for the standalone access probe.
// The orchestrator's per-document gate (Answer, step 2) calls the same
// underlying resolver directly rather than through this port, so both
// paths share one implementation.
type AccessUseCase interface {
	CheckAccess(ctx context.Context, cmd AccessCheckCommand) (AccessCheckResult, error)
}

// ConversationUseCase defines the input port for conversation feedback.
type ConversationUseCase interface {
	// Rate records a thumbs up/down/neutral rating against a logged
	// conversation.
	Rate(ctx context.Context, conversationID string, rating int) error
}

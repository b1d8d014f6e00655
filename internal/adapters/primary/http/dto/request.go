package dto

import (
	"strings"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// ProcessDocumentRequest is the body of POST /process-document and
// POST /retrain-document.
type ProcessDocumentRequest struct {
	UserDocumentID string `json:"user_document_id" binding:"required"`
}

// ChatMessageDTO is one turn of prior conversation history.
type ChatMessageDTO struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the body shared by POST /chat and POST /chat/stream. Doc
// carries the `slug` or `slug1+slug2+...` syntax the boundary parses into
// a typed slice before it ever reaches the orchestrator — the core never
// sees the raw `+`-joined string form the API accepts.
type ChatRequest struct {
	Message       string           `json:"message" binding:"required"`
	History       []ChatMessageDTO `json:"history"`
	Model         string           `json:"model"`
	Doc           string           `json:"doc" binding:"required"`
	SessionID     string           `json:"sessionId"`
	EmbeddingType string           `json:"embedding"`
}

// DocumentSlugs splits the `doc` field's `+`-joined syntax into individual
// slugs.
func (r ChatRequest) DocumentSlugs() []string {
	return strings.Split(r.Doc, "+")
}

// ChatHistory converts the request's history into the port's wire form.
func (r ChatRequest) ChatHistory() []port.ChatMessage {
	if len(r.History) == 0 {
		return nil
	}
	history := make([]port.ChatMessage, len(r.History))
	for i, m := range r.History {
		history[i] = port.ChatMessage{Role: port.ChatRole(m.Role), Content: m.Content}
	}
	return history
}

// ChatModel resolves the requested model, defaulting to standard when
// omitted.
func (r ChatRequest) ChatModel() entity.ChatModel {
	if r.Model == "" {
		return entity.ChatModelStandard
	}
	return entity.ChatModel(r.Model)
}

// CheckAccessRequest is the body of POST /check-access.
type CheckAccessRequest struct {
	DocumentSlug string  `json:"documentSlug" binding:"required"`
	Passcode     *string `json:"passcode"`
}

// RatingRequest is the body of POST /conversations/{id}/rating. Rating is
// not `binding:"required"`: 0 (neutral) is a valid value and Gin's
// required validator treats the zero value as absent.
type RatingRequest struct {
	Rating int `json:"rating"`
}

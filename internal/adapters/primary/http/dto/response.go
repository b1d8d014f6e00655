package dto

import (
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// AcceptedResponse is returned by the ingestion admission endpoints.
type AcceptedResponse struct {
	Status string `json:"status"`
}

// ProcessingLogEntryResponse is one entry of a processing-status tail.
type ProcessingLogEntryResponse struct {
	Stage     string    `json:"stage"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// UserDocumentResponse is the wire form of a UserDocument row.
type UserDocumentResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"errorMessage,omitempty"`
	MimeType     string    `json:"mimeType"`
	DocumentSlug *string   `json:"documentSlug,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewUserDocumentResponse converts a core entity to its wire form.
func NewUserDocumentResponse(ud *entity.UserDocument) UserDocumentResponse {
	return UserDocumentResponse{
		ID:           ud.ID,
		Title:        ud.Title,
		Status:       string(ud.Status),
		ErrorMessage: ud.ErrorMessage,
		MimeType:     ud.MimeType,
		DocumentSlug: ud.DocumentSlug,
		UpdatedAt:    ud.UpdatedAt,
	}
}

// ProcessingStatusResponse is the body of GET /processing-status/{id}.
type ProcessingStatusResponse struct {
	UserDocument UserDocumentResponse         `json:"userDocument"`
	Log          []ProcessingLogEntryResponse `json:"log"`
}

// NewProcessingStatusResponse converts a usecase result to its wire form.
func NewProcessingStatusResponse(result usecase.ProcessingStatusResult) ProcessingStatusResponse {
	log := make([]ProcessingLogEntryResponse, len(result.LogTail))
	for i, entry := range result.LogTail {
		log[i] = ProcessingLogEntryResponse{
			Stage:     string(entry.Stage),
			Status:    string(entry.Status),
			Message:   entry.Message,
			Timestamp: entry.Timestamp,
		}
	}
	return ProcessingStatusResponse{
		UserDocument: NewUserDocumentResponse(result.UserDocument),
		Log:          log,
	}
}

// DownloadURLResponse is the body of GET /user-documents/{id}/download-url.
type DownloadURLResponse struct {
	URL string `json:"url"`
}

// ChunkSourceResponse is one retrieved-chunk citation in a chat response.
type ChunkSourceResponse struct {
	DocumentSlug string  `json:"documentSlug"`
	Ordinal      int     `json:"ordinal"`
	PageNumber   int     `json:"pageNumber"`
	Similarity   float64 `json:"similarity"`
}

// ChatMetadataResponse is the metadata block of a chat response, shared by
// the JSON and the SSE `done` event.
type ChatMetadataResponse struct {
	ChunksUsed        int                   `json:"chunksUsed"`
	ChunkSources      []ChunkSourceResponse `json:"chunkSources"`
	ExcludedDocuments []string              `json:"excludedDocuments,omitempty"`
	EmbedMillis       int64                 `json:"embedMillis"`
	RetrieveMillis    int64                 `json:"retrieveMillis"`
	FirstTokenMillis  int64                 `json:"firstTokenMillis"`
	TotalMillis       int64                 `json:"totalMillis"`
}

// ChatResponse is the body of POST /chat.
type ChatResponse struct {
	Response             string               `json:"response"`
	Model                string               `json:"model"`
	ActualModel          string               `json:"actualModel"`
	ModelOverrideApplied bool                 `json:"modelOverrideApplied"`
	ConversationID        string               `json:"conversationId"`
	SessionID             string               `json:"sessionId"`
	Metadata              ChatMetadataResponse `json:"metadata"`
}

// NewChatResponse converts the use case's final metadata plus the
// assembled answer text into the wire response.
func NewChatResponse(answer string, meta usecase.AnswerMetadata) ChatResponse {
	sources := make([]ChunkSourceResponse, len(meta.ChunkSources))
	for i, s := range meta.ChunkSources {
		sources[i] = ChunkSourceResponse{
			DocumentSlug: s.DocumentSlug,
			Ordinal:      s.Ordinal,
			PageNumber:   s.PageNumber,
			Similarity:   s.Similarity,
		}
	}
	return ChatResponse{
		Response:             answer,
		Model:                string(meta.ModelRequested),
		ActualModel:          string(meta.ModelActual),
		ModelOverrideApplied: meta.ModelOverrideApplied,
		ConversationID:       meta.ConversationID,
		SessionID:            meta.SessionID,
		Metadata: ChatMetadataResponse{
			ChunksUsed:        meta.ChunksUsed,
			ChunkSources:      sources,
			ExcludedDocuments: meta.ExcludedDocuments,
			EmbedMillis:       meta.Timings.EmbedMillis,
			RetrieveMillis:    meta.Timings.RetrieveMillis,
			FirstTokenMillis:  meta.Timings.FirstTokenMillis,
			TotalMillis:       meta.Timings.TotalMillis,
		},
	}
}

// RefreshResponse is the body of POST /refresh-registry.
type RefreshResponse struct {
	OK            bool `json:"ok"`
	DocumentCount int  `json:"documentCount"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	RegistryAge string `json:"registryAge"`
	ActiveJobs  int    `json:"activeJobs"`
	MaxJobs     int    `json:"maxJobs"`
}

// NewHealthResponse converts a usecase.HealthStatus to its wire form.
func NewHealthResponse(status usecase.HealthStatus) HealthResponse {
	return HealthResponse{
		Status:      status.Status,
		RegistryAge: status.RegistryAge.String(),
		ActiveJobs:  status.ActiveJobs,
		MaxJobs:     status.MaxJobs,
	}
}

// CheckAccessResponse is the body of POST /check-access.
type CheckAccessResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

package entity

import "time"

// ChunkSource records one retrieved chunk's provenance and score, surfaced
// in query responses and persisted with the conversation for audit.
type ChunkSource struct {
	DocumentSlug string  `json:"documentSlug"`
	Ordinal      int     `json:"ordinal"`
	PageNumber   int     `json:"pageNumber"`
	Similarity   float64 `json:"similarity"`
}

// Timings is the per-stage latency breakdown recorded for a query.
type Timings struct {
	EmbedMillis       int64 `json:"embedMillis"`
	RetrieveMillis    int64 `json:"retrieveMillis"`
	FirstTokenMillis  int64 `json:"firstTokenMillis"`
	TotalMillis       int64 `json:"totalMillis"`
}

// RetrievalMetadata is everything about how a conversation's answer was
// grounded: which chunks were used, timing, and which candidate documents
// were excluded (e.g. due to an embedding-type mismatch in a multi-doc
// query).
type RetrievalMetadata struct {
	ChunkSources       []ChunkSource `json:"chunkSources"`
	ExcludedDocuments  []string      `json:"excludedDocuments,omitempty"`
	Timings            Timings       `json:"timings"`
}

// Conversation is one logged question/answer exchange, recorded after a
// query completes (successfully or with an error marker).
type Conversation struct {
	ID                      string             `json:"id"`
	SessionID               string             `json:"sessionId"`
	UserID                  *string            `json:"userId,omitempty"`
	DocumentSlugs           []string           `json:"documentSlugs"`
	Question                string             `json:"question"`
	Answer                  string             `json:"answer"`
	ModelRequested          ChatModel          `json:"modelRequested"`
	ModelActual             ChatModel          `json:"modelActual"`
	ModelOverrideApplied    bool               `json:"modelOverrideApplied"`
	RetrievalMetadata       RetrievalMetadata  `json:"retrievalMetadata"`
	CreatedAt               time.Time          `json:"createdAt"`
	CompletedAt             *time.Time         `json:"completedAt,omitempty"`
	Errored                 bool               `json:"errored"`
	Rating                  *int               `json:"rating,omitempty"`
}

// ApplyRating validates and sets a thumbs-style rating, per the
// conversation rating endpoint: -1 (down), 0 (neutral), 1 (up).
func (c *Conversation) ApplyRating(rating int) error {
	if rating < -1 || rating > 1 {
		return ErrRequiredField
	}
	c.Rating = &rating
	return nil
}

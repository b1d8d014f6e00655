package entity

import "time"

// ProcessingLogEntry is one append-only audit record for a stage of the
// ingestion pipeline. DocumentSlug is nil until a document record exists;
// UserDocumentID is nullable so the audit trail survives source deletion.
type ProcessingLogEntry struct {
	ID             int64             `json:"id"`
	UserDocumentID *string           `json:"userDocumentId,omitempty"`
	DocumentSlug   *string           `json:"documentSlug,omitempty"`
	Stage          ProcessingStage   `json:"stage"`
	Status         ProcessingStatus  `json:"status"`
	Message        string            `json:"message"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// NewLogEntry builds a started/progress/completed/failed log entry for the
// given user document at the current pipeline stage.
func NewLogEntry(userDocumentID string, stage ProcessingStage, status ProcessingStatus, message string) ProcessingLogEntry {
	return ProcessingLogEntry{
		UserDocumentID: &userDocumentID,
		Stage:          stage,
		Status:         status,
		Message:        message,
	}
}

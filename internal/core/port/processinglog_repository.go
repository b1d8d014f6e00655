package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// ProcessingLogRepository defines the DB sink of the processing log's dual
// file+DB write. A separate file sink lives alongside it; both are
// best-effort and must never abort ingestion on failure.
type ProcessingLogRepository interface {
	// Insert appends one log entry.
	Insert(ctx context.Context, entry entity.ProcessingLogEntry) error

	// Tail returns the most recent entries for a user document, newest
	// last, for the processing-status endpoint.
	Tail(ctx context.Context, userDocumentID string, limit int) ([]entity.ProcessingLogEntry, error)
}

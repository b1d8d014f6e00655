package usecase

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// IngestCommand requests processing of an already-uploaded source file.
type IngestCommand struct {
	UserDocumentID string
	User           *entity.User
}

// IngestAcceptedResult is returned on successful admission: processing
// continues asynchronously, observable via the UserDocument row and
// processing log.
type IngestAcceptedResult struct {
	Status string // always "accepted"
}

// IngestionUseCase defines the input port for document ingestion and
// retraining. Both operations are fire-and-forget from the caller's
// perspective once admitted: ErrBusy, ErrAlreadyProcessing, ErrForbidden,
// ErrNotStuck (ForceRetry only), or a not-found/bad-request error are the
// only synchronous outcomes.
type IngestionUseCase interface {
	// Ingest admits a pending user document into the pipeline.
	Ingest(ctx context.Context, cmd IngestCommand) (IngestAcceptedResult, error)

	// Retrain re-admits an already-ingested document, preserving its slug
	// and atomically swapping its chunks on success.
	Retrain(ctx context.Context, cmd IngestCommand) (IngestAcceptedResult, error)

	// ForceRetry clears a stuck processing row back to pending and
	// re-admits it. Returns ErrNotStuck (mapped to HTTP 409) if the row is
	// not actually stalled.
	ForceRetry(ctx context.Context, cmd IngestCommand) (IngestAcceptedResult, error)
}

// ProcessingStatusResult bundles a user document's current state with the
// tail of its processing log, per GET /processing-status/{id}.
type ProcessingStatusResult struct {
	UserDocument *entity.UserDocument
	LogTail      []entity.ProcessingLogEntry
}

// UserDocumentUseCase defines the input port for user document status and
// lifecycle queries.
type UserDocumentUseCase interface {
	// GetStatus returns a user document's current row and recent log
	// entries. Returns ErrForbidden if the caller does not own the row.
	GetStatus(ctx context.Context, userDocumentID string, user *entity.User) (ProcessingStatusResult, error)

	// ListMine lists the caller's user documents.
	ListMine(ctx context.Context, user *entity.User) ([]*entity.UserDocument, error)

	// GetDownloadURL returns a signed URL to the original upload. Returns
	// ErrFilePurged if purged after ingestion (HTTP 410 at the boundary).
	GetDownloadURL(ctx context.Context, userDocumentID string, user *entity.User) (string, error)
}

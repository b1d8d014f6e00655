package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// UserDocumentRepository defines the interface for user-uploaded source
// file tracking.
type UserDocumentRepository interface {
	// Create inserts a new user document row in status pending.
	Create(ctx context.Context, doc *entity.UserDocument) error

	// FindByID finds a user document by ID.
	FindByID(ctx context.Context, id string) (*entity.UserDocument, error)

	// ListByUser lists every user document belonging to a user.
	ListByUser(ctx context.Context, userID string) ([]*entity.UserDocument, error)

	// ListStuck lists every row in status=processing whose updated_at is
	// older than the given threshold, for the stuck-job recovery sweep.
	// excludeHeld lets the caller pass IDs currently owned by a live
	// in-process worker so they are not mistakenly recovered.
	ListStuck(ctx context.Context, thresholdSeconds int, excludeHeld []string) ([]*entity.UserDocument, error)

	// ListOrphanedBlobs lists rows eligible for the blob garbage
	// collector: status=error, file_path set, past the grace period.
	ListOrphanedBlobs(ctx context.Context, graceSeconds int) ([]*entity.UserDocument, error)

	// Update persists status, error_message, file_path, document_slug and
	// bumps updated_at.
	Update(ctx context.Context, doc *entity.UserDocument) error

	// CompareAndSwapStatus performs the force-restart / retry guard:
	// updates status only if the row's current status equals expected,
	// returning false (no error) if another writer already moved it.
	CompareAndSwapStatus(ctx context.Context, id string, expected, target entity.UserDocumentStatus) (bool, error)
}

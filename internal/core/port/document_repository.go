package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// DocumentRepository defines the interface for document data access. A
// document's chunks are managed separately by ChunkRepository; callers
// that need atomicity across both (ingestion's create-then-store-chunks,
// or cascade delete) coordinate through a use case, not this port alone.
type DocumentRepository interface {
	// Create inserts a document row. Per the ingestion pipeline's
	// contractual ordering, this must happen before any of its chunks are
	// stored.
	Create(ctx context.Context, doc *entity.Document) error

	// FindBySlug finds a document by slug.
	FindBySlug(ctx context.Context, slug string) (*entity.Document, error)

	// ListActive lists every active document, used by the registry's
	// refresh to build its in-memory snapshot.
	ListActive(ctx context.Context) ([]*entity.Document, error)

	// ListByOwner lists every document belonging to an owner.
	ListByOwner(ctx context.Context, ownerSlug string) ([]*entity.Document, error)

	// Update updates a document's mutable fields.
	Update(ctx context.Context, doc *entity.Document) error

	// Delete removes a document; the underlying store cascades to its
	// chunks per the schema's foreign-key-cascade invariant.
	Delete(ctx context.Context, slug string) error
}

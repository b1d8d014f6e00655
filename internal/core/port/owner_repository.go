package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// OwnerRepository defines the interface for owner data access.
type OwnerRepository interface {
	// Create creates a new owner.
	Create(ctx context.Context, owner *entity.Owner) error

	// FindBySlug finds an owner by slug.
	FindBySlug(ctx context.Context, slug string) (*entity.Owner, error)

	// FindByHostname finds an owner by its custom hostname.
	FindByHostname(ctx context.Context, hostname string) (*entity.Owner, error)

	// List returns every owner, used by the registry's refresh.
	List(ctx context.Context) ([]*entity.Owner, error)

	// Update updates an owner's mutable fields.
	Update(ctx context.Context, owner *entity.Owner) error
}

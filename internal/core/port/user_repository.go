package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// UserRepository defines the interface for user and role data access.
type UserRepository interface {
	// FindByID finds a user (including resolved roles) by ID.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Upsert creates or updates a user record, e.g. on first sight of a
	// verified JWT subject.
	Upsert(ctx context.Context, user *entity.User) error

	// ListRoles lists every role held by the user.
	ListRoles(ctx context.Context, userID string) ([]entity.Role, error)

	// GrantRole adds a role tuple to a user.
	GrantRole(ctx context.Context, userID string, role entity.Role) error

	// RevokeRole removes a role tuple from a user.
	RevokeRole(ctx context.Context, userID string, role entity.Role) error
}

// UserOwnerAccessRepository tracks plain owner-group membership, separate
// from roles, per the access resolver's owner_restricted check (§4.2 step
// 6 of the access model).
type UserOwnerAccessRepository interface {
	// IsMember reports whether the user belongs to the owner's group.
	IsMember(ctx context.Context, userID, ownerSlug string) (bool, error)

	// ListOwnerSlugsForUser lists every owner the user is a member of.
	ListOwnerSlugsForUser(ctx context.Context, userID string) ([]string, error)

	// AddMember adds a user to an owner's group.
	AddMember(ctx context.Context, userID, ownerSlug string) error

	// RemoveMember removes a user from an owner's group.
	RemoveMember(ctx context.Context, userID, ownerSlug string) error
}

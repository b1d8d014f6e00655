// Package access implements the access resolver (C3): a five-level
// permission model combined with owner-group membership.
package access

import (
	"context"
	"crypto/subtle"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Decision is the outcome of a CheckAccess call.
type Decision struct {
	Allowed bool
	Reason  entity.DenyReason
}

// Resolver computes effective permission given (user, document, passcode).
type Resolver struct {
	ownerAccess port.UserOwnerAccessRepository
}

// New creates a Resolver.
func New(ownerAccess port.UserOwnerAccessRepository) *Resolver {
	return &Resolver{ownerAccess: ownerAccess}
}

// CheckAccess evaluates the access rules in order; the first matching rule
// wins. Deny reasons are categorical and never disclose document existence
// beyond the slug the caller already supplied.
func (r *Resolver) CheckAccess(ctx context.Context, user *entity.User, doc *entity.Document, passcode *string) (Decision, error) {
	if !doc.Active {
		return Decision{Allowed: false, Reason: entity.DenyReasonInactive}, nil
	}

	if user != nil && user.IsSuperAdmin() {
		return Decision{Allowed: true}, nil
	}

	switch doc.AccessLevel {
	case entity.AccessLevelPublic:
		return Decision{Allowed: true}, nil

	case entity.AccessLevelPasscode:
		if doc.Passcode != nil && passcode != nil && constantTimeEqual(*doc.Passcode, *passcode) {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: entity.DenyReasonPasscode}, nil

	case entity.AccessLevelRegistered:
		if user != nil {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: entity.DenyReasonRegistered}, nil

	case entity.AccessLevelOwnerRestricted:
		if user == nil || doc.OwnerSlug == nil {
			return Decision{Allowed: false, Reason: entity.DenyReasonForbidden}, nil
		}
		if user.HasRole(entity.RoleScopeOwnerAdmin, *doc.OwnerSlug) {
			return Decision{Allowed: true}, nil
		}
		isMember, err := r.ownerAccess.IsMember(ctx, user.ID, *doc.OwnerSlug)
		if err != nil {
			return Decision{}, err
		}
		if isMember {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: entity.DenyReasonForbidden}, nil

	case entity.AccessLevelOwnerAdminOnly:
		if user != nil && doc.OwnerSlug != nil && user.HasRole(entity.RoleScopeOwnerAdmin, *doc.OwnerSlug) {
			return Decision{Allowed: true}, nil
		}
		return Decision{Allowed: false, Reason: entity.DenyReasonForbidden}, nil

	default:
		return Decision{Allowed: false, Reason: entity.DenyReasonForbidden}, nil
	}
}

// constantTimeEqual compares two passcodes without leaking timing
// information about where they first differ.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package entity

// Role is a (scope, owner) tuple. A super_admin role has a nil OwnerSlug.
type Role struct {
	Scope     RoleScope `json:"scope"`
	OwnerSlug *string   `json:"ownerSlug,omitempty"`
}

// AppliesToOwner reports whether this role grants the given scope for the
// given owner slug (or globally, for super_admin).
func (r Role) AppliesToOwner(scope RoleScope, ownerSlug string) bool {
	if r.Scope != scope {
		return false
	}
	if r.Scope == RoleScopeSuperAdmin {
		return true
	}
	return r.OwnerSlug != nil && *r.OwnerSlug == ownerSlug
}

// User represents an authenticated principal of the system.
type User struct {
	ID               string   `json:"id"`
	Email            string   `json:"email"`
	Roles            []Role   `json:"roles"`
	OwnerMemberships []string `json:"ownerMemberships"`
}

// HasRole reports whether the user holds a role with the given scope for the
// given owner. Super-admin roles match any owner.
func (u *User) HasRole(scope RoleScope, ownerSlug string) bool {
	for _, r := range u.Roles {
		if r.AppliesToOwner(scope, ownerSlug) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the user holds the super_admin role.
func (u *User) IsSuperAdmin() bool {
	for _, r := range u.Roles {
		if r.Scope == RoleScopeSuperAdmin {
			return true
		}
	}
	return false
}

// IsMemberOfOwner reports whether the user belongs to the given owner's group.
func (u *User) IsMemberOfOwner(ownerSlug string) bool {
	for _, o := range u.OwnerMemberships {
		if o == ownerSlug {
			return true
		}
	}
	return false
}

// Identity is the verified caller passed into the core by the HTTP boundary.
// A nil *Identity represents an anonymous (unauthenticated) caller.
type Identity = User

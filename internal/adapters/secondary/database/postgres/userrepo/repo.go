// Package userrepo implements port.UserRepository and
// port.UserOwnerAccessRepository against Postgres. Roles and plain owner
// membership live in separate tables since a role grants a scoped
// capability while membership is a bare group tuple the access resolver
// checks independently (§4.2 step 6).
package userrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.UserRepository and port.UserOwnerAccessRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a user Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var (
	_ port.UserRepository            = (*Repository)(nil)
	_ port.UserOwnerAccessRepository = (*Repository)(nil)
)

func (r *Repository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, queryFindByID, id)
	var user entity.User
	if err := row.Scan(&user.ID, &user.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserNotFound
		}
		return nil, fmt.Errorf("userrepo: find by id: %w", err)
	}

	roles, err := r.ListRoles(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	memberships, err := r.ListOwnerSlugsForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.OwnerMemberships = memberships

	return &user, nil
}

func (r *Repository) Upsert(ctx context.Context, user *entity.User) error {
	_, err := r.pool.Exec(ctx, queryUpsert, user.ID, user.Email)
	if err != nil {
		return fmt.Errorf("userrepo: upsert: %w", err)
	}
	return nil
}

func (r *Repository) ListRoles(ctx context.Context, userID string) ([]entity.Role, error) {
	rows, err := r.pool.Query(ctx, queryListRoles, userID)
	if err != nil {
		return nil, fmt.Errorf("userrepo: list roles: %w", err)
	}
	defer rows.Close()

	var roles []entity.Role
	for rows.Next() {
		var scope string
		var ownerSlug *string
		if err := rows.Scan(&scope, &ownerSlug); err != nil {
			return nil, fmt.Errorf("userrepo: list roles scan: %w", err)
		}
		roles = append(roles, entity.Role{Scope: entity.RoleScope(scope), OwnerSlug: ownerSlug})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userrepo: list roles: %w", err)
	}
	return roles, nil
}

func (r *Repository) GrantRole(ctx context.Context, userID string, role entity.Role) error {
	_, err := r.pool.Exec(ctx, queryGrantRole, userID, string(role.Scope), role.OwnerSlug)
	if err != nil {
		return fmt.Errorf("userrepo: grant role: %w", err)
	}
	return nil
}

func (r *Repository) RevokeRole(ctx context.Context, userID string, role entity.Role) error {
	_, err := r.pool.Exec(ctx, queryRevokeRole, userID, string(role.Scope), role.OwnerSlug)
	if err != nil {
		return fmt.Errorf("userrepo: revoke role: %w", err)
	}
	return nil
}

func (r *Repository) IsMember(ctx context.Context, userID, ownerSlug string) (bool, error) {
	var isMember bool
	if err := r.pool.QueryRow(ctx, queryIsMember, userID, ownerSlug).Scan(&isMember); err != nil {
		return false, fmt.Errorf("userrepo: is member: %w", err)
	}
	return isMember, nil
}

func (r *Repository) ListOwnerSlugsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, queryListOwnerSlugsForUser, userID)
	if err != nil {
		return nil, fmt.Errorf("userrepo: list owner slugs: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("userrepo: list owner slugs scan: %w", err)
		}
		slugs = append(slugs, slug)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userrepo: list owner slugs: %w", err)
	}
	return slugs, nil
}

func (r *Repository) AddMember(ctx context.Context, userID, ownerSlug string) error {
	_, err := r.pool.Exec(ctx, queryAddMember, userID, ownerSlug)
	if err != nil {
		return fmt.Errorf("userrepo: add member: %w", err)
	}
	return nil
}

func (r *Repository) RemoveMember(ctx context.Context, userID, ownerSlug string) error {
	_, err := r.pool.Exec(ctx, queryRemoveMember, userID, ownerSlug)
	if err != nil {
		return fmt.Errorf("userrepo: remove member: %w", err)
	}
	return nil
}

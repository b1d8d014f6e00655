// Package ownerrepo implements port.OwnerRepository against Postgres.
package ownerrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.OwnerRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an owner Repository.
func New(pool *pgxpool.Pool) port.OwnerRepository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, owner *entity.Owner) error {
	_, err := r.pool.Exec(ctx, queryCreate,
		owner.Slug, owner.Name, owner.CustomHostname, owner.DefaultChunkLimit, owner.ForcedModel)
	if err != nil {
		return fmt.Errorf("ownerrepo: create: %w", err)
	}
	return nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*entity.Owner, error) {
	row := r.pool.QueryRow(ctx, queryFindBySlug, slug)
	owner, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("ownerrepo: find by slug: %w", err)
	}
	return owner, nil
}

func (r *Repository) FindByHostname(ctx context.Context, hostname string) (*entity.Owner, error) {
	row := r.pool.QueryRow(ctx, queryFindByHostname, hostname)
	owner, err := scanOwner(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("ownerrepo: find by hostname: %w", err)
	}
	return owner, nil
}

func (r *Repository) List(ctx context.Context) ([]*entity.Owner, error) {
	rows, err := r.pool.Query(ctx, queryList)
	if err != nil {
		return nil, fmt.Errorf("ownerrepo: list: %w", err)
	}
	defer rows.Close()

	var owners []*entity.Owner
	for rows.Next() {
		owner, err := scanOwner(rows)
		if err != nil {
			return nil, fmt.Errorf("ownerrepo: list scan: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ownerrepo: list: %w", err)
	}
	return owners, nil
}

func (r *Repository) Update(ctx context.Context, owner *entity.Owner) error {
	result, err := r.pool.Exec(ctx, queryUpdate,
		owner.Slug, owner.Name, owner.CustomHostname, owner.DefaultChunkLimit, owner.ForcedModel)
	if err != nil {
		return fmt.Errorf("ownerrepo: update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrOwnerNotFound
	}
	return nil
}

// rowScanner abstracts pgx.Row and pgx.Rows, both of which implement Scan.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOwner(row rowScanner) (*entity.Owner, error) {
	var owner entity.Owner
	var forcedModel *string
	if err := row.Scan(&owner.Slug, &owner.Name, &owner.CustomHostname, &owner.DefaultChunkLimit, &forcedModel); err != nil {
		return nil, err
	}
	if forcedModel != nil {
		model := entity.ChatModel(*forcedModel)
		owner.ForcedModel = &model
	}
	return &owner, nil
}

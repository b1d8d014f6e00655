// Package userdocumentrepo implements port.UserDocumentRepository against
// Postgres.
package userdocumentrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.UserDocumentRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a user document Repository.
func New(pool *pgxpool.Pool) port.UserDocumentRepository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, doc *entity.UserDocument) error {
	_, err := r.pool.Exec(ctx, queryCreate,
		doc.ID, doc.UserID, doc.Title, string(doc.Status), doc.ErrorMessage, doc.FilePath, doc.MimeType, doc.DocumentSlug,
		doc.RequestedOwnerSlug, string(doc.RequestedAccessLevel), doc.RequestedPasscode)
	if err != nil {
		return fmt.Errorf("userdocumentrepo: create: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*entity.UserDocument, error) {
	row := r.pool.QueryRow(ctx, queryFindByID, id)
	doc, err := scanUserDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrUserDocumentNotFound
		}
		return nil, fmt.Errorf("userdocumentrepo: find by id: %w", err)
	}
	return doc, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*entity.UserDocument, error) {
	return r.queryList(ctx, queryListByUser, userID)
}

func (r *Repository) ListStuck(ctx context.Context, thresholdSeconds int, excludeHeld []string) ([]*entity.UserDocument, error) {
	if excludeHeld == nil {
		excludeHeld = []string{}
	}
	return r.queryList(ctx, queryListStuck, thresholdSeconds, excludeHeld)
}

func (r *Repository) ListOrphanedBlobs(ctx context.Context, graceSeconds int) ([]*entity.UserDocument, error) {
	return r.queryList(ctx, queryListOrphanedBlobs, graceSeconds)
}

func (r *Repository) queryList(ctx context.Context, query string, args ...any) ([]*entity.UserDocument, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("userdocumentrepo: list: %w", err)
	}
	defer rows.Close()

	var docs []*entity.UserDocument
	for rows.Next() {
		doc, err := scanUserDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("userdocumentrepo: list scan: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userdocumentrepo: list: %w", err)
	}
	return docs, nil
}

func (r *Repository) Update(ctx context.Context, doc *entity.UserDocument) error {
	result, err := r.pool.Exec(ctx, queryUpdate,
		doc.ID, string(doc.Status), doc.ErrorMessage, doc.FilePath, doc.DocumentSlug)
	if err != nil {
		return fmt.Errorf("userdocumentrepo: update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrUserDocumentNotFound
	}
	return nil
}

func (r *Repository) CompareAndSwapStatus(ctx context.Context, id string, expected, target entity.UserDocumentStatus) (bool, error) {
	result, err := r.pool.Exec(ctx, queryCompareAndSwapStatus, id, string(expected), string(target))
	if err != nil {
		return false, fmt.Errorf("userdocumentrepo: compare and swap status: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserDocument(row rowScanner) (*entity.UserDocument, error) {
	var doc entity.UserDocument
	var status, requestedAccessLevel string

	if err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Title, &status, &doc.ErrorMessage, &doc.FilePath, &doc.MimeType, &doc.DocumentSlug, &doc.UpdatedAt,
		&doc.RequestedOwnerSlug, &requestedAccessLevel, &doc.RequestedPasscode,
	); err != nil {
		return nil, err
	}
	doc.Status = entity.UserDocumentStatus(status)
	doc.RequestedAccessLevel = entity.AccessLevel(requestedAccessLevel)
	return &doc, nil
}

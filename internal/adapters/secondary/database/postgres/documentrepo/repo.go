// Package documentrepo implements port.DocumentRepository against Postgres.
package documentrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.DocumentRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a document Repository.
func New(pool *pgxpool.Pool) port.DocumentRepository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, doc *entity.Document) error {
	metadata, downloads, err := encodeDocumentJSON(doc)
	if err != nil {
		return fmt.Errorf("documentrepo: create: %w", err)
	}
	_, err = r.pool.Exec(ctx, queryCreate,
		doc.Slug, doc.Title, doc.Subtitle, doc.OwnerSlug, string(doc.AccessLevel), doc.Passcode,
		doc.ChunkLimitOverride, doc.ForcedModel, string(doc.EmbeddingType), doc.Active,
		metadata, downloads)
	if err != nil {
		return fmt.Errorf("documentrepo: create: %w", err)
	}
	return nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx, queryFindBySlug, slug)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentrepo: find by slug: %w", err)
	}
	return doc, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]*entity.Document, error) {
	return r.queryList(ctx, queryListActive)
}

func (r *Repository) ListByOwner(ctx context.Context, ownerSlug string) ([]*entity.Document, error) {
	return r.queryList(ctx, queryListByOwner, ownerSlug)
}

func (r *Repository) queryList(ctx context.Context, query string, args ...any) ([]*entity.Document, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("documentrepo: list: %w", err)
	}
	defer rows.Close()

	var docs []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("documentrepo: list scan: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documentrepo: list: %w", err)
	}
	return docs, nil
}

func (r *Repository) Update(ctx context.Context, doc *entity.Document) error {
	metadata, downloads, err := encodeDocumentJSON(doc)
	if err != nil {
		return fmt.Errorf("documentrepo: update: %w", err)
	}
	result, err := r.pool.Exec(ctx, queryUpdate,
		doc.Slug, doc.Title, doc.Subtitle, doc.OwnerSlug, string(doc.AccessLevel), doc.Passcode,
		doc.ChunkLimitOverride, doc.ForcedModel, string(doc.EmbeddingType), doc.Active,
		metadata, downloads)
	if err != nil {
		return fmt.Errorf("documentrepo: update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, slug string) error {
	result, err := r.pool.Exec(ctx, queryDelete, slug)
	if err != nil {
		return fmt.Errorf("documentrepo: delete: %w", err)
	}
	if result.RowsAffected() == 0 {
		return entity.ErrDocumentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.Document, error) {
	var doc entity.Document
	var accessLevel, embeddingType string
	var forcedModel *string
	var metadataRaw, downloadsRaw []byte

	if err := row.Scan(
		&doc.Slug, &doc.Title, &doc.Subtitle, &doc.OwnerSlug, &accessLevel, &doc.Passcode,
		&doc.ChunkLimitOverride, &forcedModel, &embeddingType, &doc.Active,
		&metadataRaw, &downloadsRaw,
	); err != nil {
		return nil, err
	}

	doc.AccessLevel = entity.AccessLevel(accessLevel)
	doc.EmbeddingType = entity.EmbeddingType(embeddingType)
	if forcedModel != nil {
		model := entity.ChatModel(*forcedModel)
		doc.ForcedModel = &model
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if len(downloadsRaw) > 0 {
		if err := json.Unmarshal(downloadsRaw, &doc.Downloads); err != nil {
			return nil, fmt.Errorf("decode downloads: %w", err)
		}
	}
	return &doc, nil
}

func encodeDocumentJSON(doc *entity.Document) (metadata, downloads []byte, err error) {
	metadata, err = json.Marshal(doc.Metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("encode metadata: %w", err)
	}
	downloads, err = json.Marshal(doc.Downloads)
	if err != nil {
		return nil, nil, fmt.Errorf("encode downloads: %w", err)
	}
	return metadata, downloads, nil
}

// Package chunkrepo implements port.ChunkRepository against Postgres with
// pgvector. Chunks of each entity.EmbeddingType live in their own table
// (chunks_openai, chunks_local) since pgvector's vector column is fixed-
// width per table; every method routes to the right one via tableFor.
package chunkrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// foreignKeyViolation is Postgres' SQLSTATE for a foreign-key constraint
// failure, raised when a chunk batch references a document_slug with no
// matching document row.
const foreignKeyViolation = "23503"

// Repository implements port.ChunkRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a chunk Repository.
func New(pool *pgxpool.Pool) port.ChunkRepository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertBatch(ctx context.Context, embeddingType entity.EmbeddingType, chunks []*entity.Chunk) error {
	table, ok := tableFor(string(embeddingType))
	if !ok {
		return fmt.Errorf("chunkrepo: insert batch: %w", entity.ErrUnsupportedMimeType)
	}

	batch := &pgx.Batch{}
	query := queryInsertBatch(table)
	for _, chunk := range chunks {
		batch.Queue(query,
			chunk.DocumentSlug, chunk.Ordinal, chunk.Text, pgvector.NewVector(chunk.Embedding),
			chunk.Metadata.PageNumber, chunk.Metadata.CharStart, chunk.Metadata.CharEnd)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range chunks {
		if _, err := results.Exec(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return entity.ErrOrphanChunkInsert
			}
			return fmt.Errorf("chunkrepo: insert batch: %w", err)
		}
	}
	return nil
}

func (r *Repository) DeleteByDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string) error {
	table, ok := tableFor(string(embeddingType))
	if !ok {
		return fmt.Errorf("chunkrepo: delete by document: %w", entity.ErrUnsupportedMimeType)
	}
	_, err := r.pool.Exec(ctx, queryDeleteByDocument(table), documentSlug)
	if err != nil {
		return fmt.Errorf("chunkrepo: delete by document: %w", err)
	}
	return nil
}

func (r *Repository) SearchSingleDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string, query []float32, limit int) ([]entity.RetrievedChunk, error) {
	table, ok := tableFor(string(embeddingType))
	if !ok {
		return nil, fmt.Errorf("chunkrepo: search single document: %w", entity.ErrUnsupportedMimeType)
	}
	rows, err := r.pool.Query(ctx, querySearchSingleDocument(table), documentSlug, pgvector.NewVector(query), limit)
	if err != nil {
		return nil, fmt.Errorf("chunkrepo: search single document: %w", err)
	}
	defer rows.Close()
	return scanRetrievedChunks(rows)
}

func (r *Repository) SearchMultiDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlugs []string, query []float32, perDocumentLimit, overallLimit int) ([]entity.RetrievedChunk, error) {
	table, ok := tableFor(string(embeddingType))
	if !ok {
		return nil, fmt.Errorf("chunkrepo: search multi document: %w", entity.ErrUnsupportedMimeType)
	}
	rows, err := r.pool.Query(ctx, querySearchMultiDocument(table), documentSlugs, pgvector.NewVector(query), perDocumentLimit, overallLimit)
	if err != nil {
		return nil, fmt.Errorf("chunkrepo: search multi document: %w", err)
	}
	defer rows.Close()
	return scanRetrievedChunks(rows)
}

func scanRetrievedChunks(rows pgx.Rows) ([]entity.RetrievedChunk, error) {
	var chunks []entity.RetrievedChunk
	for rows.Next() {
		var rc entity.RetrievedChunk
		if err := rows.Scan(
			&rc.DocumentSlug, &rc.DocumentTitle, &rc.Ordinal, &rc.Text,
			&rc.Metadata.PageNumber, &rc.Metadata.CharStart, &rc.Metadata.CharEnd,
			&rc.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan retrieved chunk: %w", err)
		}
		chunks = append(chunks, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

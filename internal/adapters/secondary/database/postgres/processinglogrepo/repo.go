// Package processinglogrepo implements port.ProcessingLogRepository
// against Postgres, the DB half of processinglog.Sink's dual file+DB
// write.
package processinglogrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Repository implements port.ProcessingLogRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a processing log Repository.
func New(pool *pgxpool.Pool) port.ProcessingLogRepository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, entry entity.ProcessingLogEntry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("processinglogrepo: insert: encode metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx, queryInsert,
		entry.UserDocumentID, entry.DocumentSlug, string(entry.Stage), string(entry.Status), entry.Message, metadata)
	if err != nil {
		return fmt.Errorf("processinglogrepo: insert: %w", err)
	}
	return nil
}

func (r *Repository) Tail(ctx context.Context, userDocumentID string, limit int) ([]entity.ProcessingLogEntry, error) {
	rows, err := r.pool.Query(ctx, queryTail, userDocumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("processinglogrepo: tail: %w", err)
	}
	defer rows.Close()

	var entries []entity.ProcessingLogEntry
	for rows.Next() {
		var entry entity.ProcessingLogEntry
		var stage, status string
		var metadataRaw []byte
		if err := rows.Scan(&entry.ID, &entry.UserDocumentID, &entry.DocumentSlug, &stage, &status, &entry.Message, &metadataRaw, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("processinglogrepo: tail scan: %w", err)
		}
		entry.Stage = entity.ProcessingStage(stage)
		entry.Status = entity.ProcessingStatus(status)
		if len(metadataRaw) > 0 {
			if err := json.Unmarshal(metadataRaw, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("processinglogrepo: tail decode metadata: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("processinglogrepo: tail: %w", err)
	}
	return entries, nil
}

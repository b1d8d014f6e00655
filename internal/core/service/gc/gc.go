// Package gc implements the orphaned-blob garbage collector: a periodic
// sweep that deletes source blobs left behind by failed ingestion runs
// once the grace period has elapsed. This functionality is not named in
// the original distillation's module list but supplements it: a deployment
// with no blob reclamation leaks storage indefinitely for every failed
// upload, which the original implementation (original_source/) does guard
// against.
package gc

import (
	"context"
	"log/slog"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// sinkRecorder is the minimal processinglog.Sink surface this package uses.
type sinkRecorder interface {
	Completed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string)
}

// Collector implements the blob garbage collector.
type Collector struct {
	userDocs port.UserDocumentRepository
	storage  port.StorageAdapter
	logs     sinkRecorder
	cfg      config.StorageConfig
}

// New creates a Collector.
func New(userDocs port.UserDocumentRepository, storage port.StorageAdapter, logs sinkRecorder, cfg config.StorageConfig) *Collector {
	return &Collector{userDocs: userDocs, storage: storage, logs: logs, cfg: cfg}
}

// Run lists every orphaned blob candidate, re-validates the grace period
// against the row's current state (it may have been retried since the
// listing query ran), deletes the blob, and clears file_path.
func (c *Collector) Run(ctx context.Context) error {
	graceSecs := int(c.cfg.GarbageCollectionGrace().Seconds())
	candidates, err := c.userDocs.ListOrphanedBlobs(ctx, graceSecs)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, ud := range candidates {
		if !ud.OrphanedBlob(now, c.cfg.GarbageCollectionGrace()) {
			continue
		}
		key := *ud.FilePath
		if err := c.storage.Delete(ctx, key); err != nil {
			slog.ErrorContext(ctx, "blob gc failed to delete object", slog.String("user_document_id", ud.ID), slog.String("key", key), slog.String("error", err.Error()))
			continue
		}
		ud.FilePath = nil
		if err := c.userDocs.Update(ctx, ud); err != nil {
			slog.ErrorContext(ctx, "blob gc failed to clear file_path", slog.String("user_document_id", ud.ID), slog.String("error", err.Error()))
			continue
		}
		c.logs.Completed(ctx, ud.ID, entity.StageCleanup, "orphaned source blob removed")
		slog.InfoContext(ctx, "blob gc removed orphaned object", slog.String("user_document_id", ud.ID), slog.String("key", key))
	}
	return nil
}

// Package stuckjob implements Stuck-Job Recovery (C10): a periodic sweep
// that reclaims UserDocument rows wedged in "processing" by a crashed or
// forgotten worker.
package stuckjob

import (
	"context"
	"log/slog"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// liveWorkerTracker reports which user documents are still owned by a
// live in-process ingestion goroutine, so the sweep never recovers a row
// that is merely slow rather than actually stuck. Satisfied by
// *ingestion.Service.
type liveWorkerTracker interface {
	HeldByLiveWorker(userDocumentID string) bool
	HeldIDs() []string
}

// Sweeper implements the §4.9 background scan.
type Sweeper struct {
	userDocs port.UserDocumentRepository
	logs     sinkRecorder
	held     liveWorkerTracker
	cfg      config.ProcessingConfig
}

// sinkRecorder is the minimal surface this package needs from
// processinglog.Sink, kept narrow so stuckjob doesn't depend on the
// concrete ingestion pipeline beyond the liveWorkerTracker interface above.
type sinkRecorder interface {
	Failed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string)
}

// New creates a Sweeper.
func New(userDocs port.UserDocumentRepository, logs sinkRecorder, held liveWorkerTracker, cfg config.ProcessingConfig) *Sweeper {
	return &Sweeper{userDocs: userDocs, logs: logs, held: held, cfg: cfg}
}

// Run is registered with the scheduler at a one-minute interval. It lists
// every stuck row not held by a live worker, transitions it back to
// pending, and appends a "stalled" log entry.
func (sw *Sweeper) Run(ctx context.Context) error {
	thresholdSecs := int(sw.cfg.StuckThreshold().Seconds())
	stuck, err := sw.userDocs.ListStuck(ctx, thresholdSecs, sw.held.HeldIDs())
	if err != nil {
		return err
	}

	for _, ud := range stuck {
		if sw.held.HeldByLiveWorker(ud.ID) {
			continue
		}
		if err := ud.TransitionTo(entity.UserDocumentStatusPending); err != nil {
			slog.ErrorContext(ctx, "stuck sweep could not transition row", slog.String("user_document_id", ud.ID), slog.String("error", err.Error()))
			continue
		}
		if err := sw.userDocs.Update(ctx, ud); err != nil {
			slog.ErrorContext(ctx, "stuck sweep failed to persist transition", slog.String("user_document_id", ud.ID), slog.String("error", err.Error()))
			continue
		}
		sw.logs.Failed(ctx, ud.ID, entity.StageError, "stalled: no progress past the stuck threshold")
		slog.WarnContext(ctx, "recovered stuck processing job", slog.String("user_document_id", ud.ID))
	}
	return nil
}

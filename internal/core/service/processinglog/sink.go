// Package processinglog implements the processing log (C8): an append-only,
// dual-sink audit trail of ingestion pipeline stages. Both sinks are
// best-effort; a logging failure must never abort ingestion.
package processinglog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

// Sink writes a processing log entry to a local file (line-delimited JSON)
// and to the database repository. Both writes are independently swallowed
// on failure; a stderr line is the fallback so operators still see it.
type Sink struct {
	repo port.ProcessingLogRepository

	mu   sync.Mutex
	file io.Writer
}

// New creates a Sink writing to path in addition to the DB repository. If
// the file cannot be opened, the Sink still works with the DB-only path;
// the open failure is logged once and every subsequent file write is a
// no-op.
func New(repo port.ProcessingLogRepository, path string) *Sink {
	s := &Sink{repo: repo}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		slog.Warn("processing log file unavailable, continuing with DB sink only",
			slog.String("path", path), slog.String("error", err.Error()))
		return s
	}
	s.file = f
	return s
}

// Record appends entry to both sinks. Errors from either sink are logged
// to stderr and never returned: the ingestion pipeline must proceed
// regardless of audit-trail availability.
func (s *Sink) Record(ctx context.Context, entry entity.ProcessingLogEntry) {
	entry.Timestamp = time.Now().UTC()

	s.mu.Lock()
	file := s.file
	s.mu.Unlock()
	if file != nil {
		line, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "processing log: marshal entry: %v\n", err)
		} else if _, err := file.Write(append(line, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "processing log: file write: %v\n", err)
		}
	}

	if s.repo != nil {
		if err := s.repo.Insert(ctx, entry); err != nil {
			fmt.Fprintf(os.Stderr, "processing log: db insert: %v\n", err)
		}
	}

	slog.InfoContext(ctx, "processing log entry",
		slog.String("stage", string(entry.Stage)),
		slog.String("status", string(entry.Status)),
		slog.String("message", entry.Message))
}

// Started records a stage's "started" entry.
func (s *Sink) Started(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string) {
	s.Record(ctx, entity.NewLogEntry(userDocumentID, stage, entity.ProcessingStatusStarted, message))
}

// Completed records a stage's "completed" entry.
func (s *Sink) Completed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string) {
	s.Record(ctx, entity.NewLogEntry(userDocumentID, stage, entity.ProcessingStatusCompleted, message))
}

// Failed records a stage's "failed" entry.
func (s *Sink) Failed(ctx context.Context, userDocumentID string, stage entity.ProcessingStage, message string) {
	s.Record(ctx, entity.NewLogEntry(userDocumentID, stage, entity.ProcessingStatusFailed, message))
}

// Tail delegates to the DB repository for GET /processing-status/{id}.
func (s *Sink) Tail(ctx context.Context, userDocumentID string, limit int) ([]entity.ProcessingLogEntry, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.Tail(ctx, userDocumentID, limit)
}

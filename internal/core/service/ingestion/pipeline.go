// Package ingestion implements the ingestion pipeline (C5): the ten-stage,
// concurrency-bounded, retried document processing flow from an uploaded
// blob to a queryable Document with embedded chunks.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/core/service/chunker"
	"github.com/ragsvc/rag-engine/internal/core/service/concurrency"
	"github.com/ragsvc/rag-engine/internal/core/service/processinglog"
	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// chunkInsertBatchSize bounds how many chunks are embedded/stored per
// provider call, per the spec's embed and store stages.
const chunkInsertBatchSize = 50

// Service implements usecase.IngestionUseCase and usecase.UserDocumentUseCase.
type Service struct {
	concurrency *concurrency.Manager
	registry    *registry.Registry
	chunker     *chunker.Chunker
	logs        *processinglog.Sink

	storage    port.StorageAdapter
	extractors port.ContentExtractorFactory
	chat       port.ChatClient
	embedding  port.EmbeddingClient
	documents  port.DocumentRepository
	chunksRepo port.ChunkRepository
	userDocs   port.UserDocumentRepository

	embeddingCfg   config.EmbeddingConfig
	chatCfg        config.ChatConfig
	processingCfg  config.ProcessingConfig

	held   sync.Map // userDocumentID -> struct{}, owned by a live goroutine
}

// New constructs the ingestion Service.
func New(
	cm *concurrency.Manager,
	reg *registry.Registry,
	ck *chunker.Chunker,
	logs *processinglog.Sink,
	storage port.StorageAdapter,
	extractors port.ContentExtractorFactory,
	chat port.ChatClient,
	embedding port.EmbeddingClient,
	documents port.DocumentRepository,
	chunksRepo port.ChunkRepository,
	userDocs port.UserDocumentRepository,
	embeddingCfg config.EmbeddingConfig,
	chatCfg config.ChatConfig,
	processingCfg config.ProcessingConfig,
) *Service {
	return &Service{
		concurrency: cm, registry: reg, chunker: ck, logs: logs,
		storage: storage, extractors: extractors, chat: chat, embedding: embedding,
		documents: documents, chunksRepo: chunksRepo, userDocs: userDocs,
		embeddingCfg: embeddingCfg, chatCfg: chatCfg, processingCfg: processingCfg,
	}
}

// HeldByLiveWorker reports whether a user document is currently being
// processed by a goroutine in this process, for the stuck-job sweep (C10)
// to avoid recovering a job another worker still legitimately holds.
func (s *Service) HeldByLiveWorker(userDocumentID string) bool {
	_, ok := s.held.Load(userDocumentID)
	return ok
}

// HeldIDs lists every user document ID currently owned by a live
// in-process worker, so the stuck-job sweep can exclude them at the
// repository query rather than filtering the result set afterward.
func (s *Service) HeldIDs() []string {
	var ids []string
	s.held.Range(func(key, _ any) bool {
		ids = append(ids, key.(string))
		return true
	})
	return ids
}

// Ingest implements usecase.IngestionUseCase.
func (s *Service) Ingest(ctx context.Context, cmd usecase.IngestCommand) (usecase.IngestAcceptedResult, error) {
	ud, err := s.loadOwned(ctx, cmd)
	if err != nil {
		return usecase.IngestAcceptedResult{}, err
	}
	if ud.Status != entity.UserDocumentStatusPending && ud.Status != entity.UserDocumentStatusError {
		return usecase.IngestAcceptedResult{}, entity.ErrAlreadyProcessing
	}
	return s.admitAndStart(ctx, ud, false)
}

// Retrain implements usecase.IngestionUseCase.
func (s *Service) Retrain(ctx context.Context, cmd usecase.IngestCommand) (usecase.IngestAcceptedResult, error) {
	ud, err := s.loadOwned(ctx, cmd)
	if err != nil {
		return usecase.IngestAcceptedResult{}, err
	}
	if ud.Status != entity.UserDocumentStatusReady && ud.Status != entity.UserDocumentStatusError {
		return usecase.IngestAcceptedResult{}, entity.ErrAlreadyProcessing
	}
	return s.admitAndStart(ctx, ud, true)
}

// ForceRetry implements usecase.IngestionUseCase.
func (s *Service) ForceRetry(ctx context.Context, cmd usecase.IngestCommand) (usecase.IngestAcceptedResult, error) {
	ud, err := s.loadOwned(ctx, cmd)
	if err != nil {
		return usecase.IngestAcceptedResult{}, err
	}
	if !ud.IsStuck(time.Now().UTC(), s.processingCfg.StuckThreshold()) {
		return usecase.IngestAcceptedResult{}, entity.ErrNotStuck
	}
	ok, err := s.userDocs.CompareAndSwapStatus(ctx, ud.ID, entity.UserDocumentStatusProcessing, entity.UserDocumentStatusPending)
	if err != nil {
		return usecase.IngestAcceptedResult{}, err
	}
	if !ok {
		return usecase.IngestAcceptedResult{}, entity.ErrNotStuck
	}
	ud.Status = entity.UserDocumentStatusPending
	return s.admitAndStart(ctx, ud, ud.DocumentSlug != nil)
}

func (s *Service) loadOwned(ctx context.Context, cmd usecase.IngestCommand) (*entity.UserDocument, error) {
	ud, err := s.userDocs.FindByID(ctx, cmd.UserDocumentID)
	if err != nil {
		return nil, err
	}
	if cmd.User == nil || (ud.UserID != cmd.User.ID && !cmd.User.IsSuperAdmin()) {
		return nil, entity.ErrForbidden
	}
	return ud, nil
}

// admitAndStart acquires a concurrency slot and, on success, transitions
// the row to processing and launches the pipeline asynchronously. The
// caller observes only the synchronous admission decision.
func (s *Service) admitAndStart(ctx context.Context, ud *entity.UserDocument, retrain bool) (usecase.IngestAcceptedResult, error) {
	token, load, ok := s.concurrency.TryAcquire()
	if !ok {
		return usecase.IngestAcceptedResult{}, entity.ErrBusy
	}

	if err := ud.TransitionTo(entity.UserDocumentStatusProcessing); err != nil {
		s.concurrency.Release(token)
		return usecase.IngestAcceptedResult{}, err
	}
	ud.UpdatedAt = time.Now().UTC()
	if err := s.userDocs.Update(ctx, ud); err != nil {
		s.concurrency.Release(token)
		return usecase.IngestAcceptedResult{}, err
	}

	s.held.Store(ud.ID, struct{}{})

	slog.InfoContext(ctx, "ingestion admitted", slog.String("user_document_id", ud.ID),
		slog.Int("active_jobs", load.Active), slog.Int("max_jobs", load.Max))

	go s.run(ud, retrain, token)

	return usecase.IngestAcceptedResult{Status: "accepted"}, nil
}

// run executes the ten pipeline stages for ud. It runs detached from the
// admitting request's context: ingestion has no external cancel endpoint
// (§5), so a client disconnect must not abort an in-flight job.
func (s *Service) run(ud *entity.UserDocument, retrain bool, token concurrency.Token) {
	ctx := context.Background()
	defer s.held.Delete(ud.ID)
	defer s.concurrency.Release(token)

	if err := s.process(ctx, ud, retrain); err != nil {
		s.logs.Failed(ctx, ud.ID, entity.StageError, err.Error())
		_ = ud.MarkError(err.Error())
		ud.UpdatedAt = time.Now().UTC()
		if uerr := s.userDocs.Update(ctx, ud); uerr != nil {
			slog.ErrorContext(ctx, "failed to persist ingestion error state",
				slog.String("user_document_id", ud.ID), slog.String("error", uerr.Error()))
		}
	}
}

func (s *Service) process(ctx context.Context, ud *entity.UserDocument, retrain bool) error {
	// Stage 2: fetch.
	s.logs.Started(ctx, ud.ID, entity.StageDownload, "downloading source blob")
	if ud.FilePath == nil {
		return fmt.Errorf("%w: no source file on record", entity.ErrEmptyUpload)
	}
	blob, err := s.storage.Download(ctx, *ud.FilePath)
	if err != nil {
		return fmt.Errorf("downloading blob: %w", err)
	}
	s.logs.Completed(ctx, ud.ID, entity.StageDownload, "downloaded source blob")

	// Stage 3: extract.
	s.logs.Started(ctx, ud.ID, entity.StageExtract, "extracting text")
	extractor, err := s.extractors.GetExtractor(ud.MimeType)
	if err != nil {
		return fmt.Errorf("selecting extractor: %w", err)
	}
	extracted, err := extractor.Extract(ctx, blob, ud.MimeType)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	s.logs.Completed(ctx, ud.ID, entity.StageExtract, fmt.Sprintf("extracted %d page(s)", extracted.PageCount))

	// Stage 4: summarize (best-effort).
	s.logs.Started(ctx, ud.ID, entity.StageSummarize, "summarizing document")
	title, subtitle := ud.Title, ""
	summarizeCtx, cancel := context.WithTimeout(ctx, s.chatCfg.SummarizationTimeout())
	summary, err := s.chat.Summarize(summarizeCtx, extracted.Text)
	cancel()
	if err != nil {
		s.logs.Failed(ctx, ud.ID, entity.StageSummarize, fmt.Sprintf("summarization failed, continuing without it: %v", err))
	} else {
		if summary.Title != "" {
			title = summary.Title
		}
		subtitle = summary.Subtitle
		s.logs.Completed(ctx, ud.ID, entity.StageSummarize, "summarized document")
	}

	// Stage 5: chunk.
	s.logs.Started(ctx, ud.ID, entity.StageChunk, "chunking text")
	chunks, _ := s.chunker.Chunk(extracted.Text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no extractable text produced any chunks", entity.ErrEmptyUpload)
	}
	s.logs.Completed(ctx, ud.ID, entity.StageChunk, fmt.Sprintf("produced %d chunk(s)", len(chunks)))

	// Stage 6: embed.
	s.logs.Started(ctx, ud.ID, entity.StageEmbed, "embedding chunks")
	if err := s.embedBatches(ctx, chunks); err != nil {
		return fmt.Errorf("embedding chunks: %w", err)
	}
	s.logs.Completed(ctx, ud.ID, entity.StageEmbed, "embedded all chunks")

	embeddingType := entity.EmbeddingType(s.embedding.ProviderName())
	if !embeddingType.IsValid() {
		embeddingType = entity.EmbeddingTypeOpenAI
	}

	// Stage 7: create (or reuse, for retraining) the document record
	// before any chunk is stored.
	var slug string
	if retrain && ud.DocumentSlug != nil {
		slug = *ud.DocumentSlug
		existing, err := s.documents.FindBySlug(ctx, slug)
		if err != nil {
			return fmt.Errorf("loading document for retrain: %w", err)
		}
		existing.Title = title
		existing.Subtitle = subtitle
		if err := s.documents.Update(ctx, existing); err != nil {
			return fmt.Errorf("updating document for retrain: %w", err)
		}
		// Atomic chunk swap: clear the old generation before storing the
		// new one.
		if err := s.chunksRepo.DeleteByDocument(ctx, embeddingType, slug); err != nil {
			return fmt.Errorf("clearing prior chunks for retrain: %w", err)
		}
	} else {
		slug, err = uniqueSlug(ctx, s.documents, title)
		if err != nil {
			return fmt.Errorf("allocating document slug: %w", err)
		}
		accessLevel := ud.RequestedAccessLevel
		if accessLevel == "" {
			accessLevel = entity.AccessLevelPublic
		}
		doc := &entity.Document{
			Slug:          slug,
			Title:         title,
			Subtitle:      subtitle,
			OwnerSlug:     ud.RequestedOwnerSlug,
			AccessLevel:   accessLevel,
			Passcode:      ud.RequestedPasscode,
			EmbeddingType: embeddingType,
			Active:        true,
		}
		if err := doc.Validate(); err != nil {
			return fmt.Errorf("validating new document: %w", err)
		}
		if err := s.documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("creating document record: %w", err)
		}
	}

	// Stage 8: store chunks. A failure here rolls back the document
	// record (cascading to any partially stored chunks) unless this is a
	// retrain, where the prior generation was already deleted and the
	// document predates this run.
	for i := range chunks {
		chunks[i].DocumentSlug = slug
	}
	if err := s.storeChunks(ctx, embeddingType, chunks); err != nil {
		if !retrain {
			if delErr := s.documents.Delete(ctx, slug); delErr != nil {
				slog.ErrorContext(ctx, "rollback delete failed after chunk store error",
					slog.String("document_slug", slug), slog.String("error", delErr.Error()))
			}
		}
		return fmt.Errorf("storing chunks: %w", err)
	}

	// Stage 9: purge source blob (best-effort).
	s.logs.Started(ctx, ud.ID, entity.StageCleanup, "purging source blob")
	if err := s.storage.Delete(ctx, *ud.FilePath); err != nil {
		s.logs.Failed(ctx, ud.ID, entity.StageCleanup, fmt.Sprintf("blob purge failed, leaving source in place: %v", err))
	} else {
		s.logs.Completed(ctx, ud.ID, entity.StageCleanup, "purged source blob")
		ud.FilePath = nil
	}

	// Stage 10: finalize.
	if err := ud.MarkReady(slug); err != nil {
		return fmt.Errorf("finalizing: %w", err)
	}
	ud.UpdatedAt = time.Now().UTC()
	if err := s.userDocs.Update(ctx, ud); err != nil {
		return fmt.Errorf("persisting final status: %w", err)
	}
	s.logs.Completed(ctx, ud.ID, entity.StageComplete, "ingestion complete")

	if s.registry != nil {
		if err := s.registry.Refresh(ctx); err != nil {
			slog.WarnContext(ctx, "registry refresh after ingestion failed, will pick up on next scheduled refresh",
				slog.String("document_slug", slug), slog.String("error", err.Error()))
		}
	}
	return nil
}

// embedBatches embeds chunks in batches of up to chunkInsertBatchSize,
// pacing between batches by current global load and racing each batch's
// SDK call against a hard timeout per the spec's double-timeout rule.
func (s *Service) embedBatches(ctx context.Context, chunks []entity.Chunk) error {
	for start := 0; start < len(chunks); start += chunkInsertBatchSize {
		end := start + chunkInsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, end-start)
		for i, c := range chunks[start:end] {
			texts[i] = c.Text
		}

		var vectors [][]float32
		err := retryWithBackoff(ctx, func(attemptCtx context.Context) error {
			hardCtx, cancel := context.WithTimeout(attemptCtx, s.embeddingCfg.HardTimeout())
			defer cancel()
			sdkCtx, sdkCancel := context.WithTimeout(hardCtx, s.embeddingCfg.SDKTimeout())
			defer sdkCancel()

			v, embedErr := s.embedding.CreateEmbeddings(sdkCtx, texts)
			if embedErr != nil {
				return embedErr
			}
			vectors = v
			return nil
		})
		if err != nil {
			return err
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}

		if end < len(chunks) {
			time.Sleep(adaptivePacingDelay(s.concurrency.Load().Active))
		}
	}
	return nil
}

// storeChunks persists chunks in batches of up to chunkInsertBatchSize.
func (s *Service) storeChunks(ctx context.Context, embeddingType entity.EmbeddingType, chunks []entity.Chunk) error {
	for start := 0; start < len(chunks); start += chunkInsertBatchSize {
		end := start + chunkInsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := make([]*entity.Chunk, 0, end-start)
		for i := range chunks[start:end] {
			c := &chunks[start+i]
			if err := c.Validate(); err != nil {
				return err
			}
			batch = append(batch, c)
		}
		if err := s.chunksRepo.InsertBatch(ctx, embeddingType, batch); err != nil {
			return err
		}
	}
	return nil
}

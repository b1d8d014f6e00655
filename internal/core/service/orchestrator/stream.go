package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// streamJob carries everything the background streaming goroutine needs,
// gathered synchronously by Answer before the goroutine is spawned.
type streamJob struct {
	req    port.ChatRequest
	out    chan<- port.StreamEvent
	handle *usecase.AnswerMetadataHandle

	started          time.Time
	embedDuration    time.Duration
	retrieveDuration time.Duration

	conversationID string
	sessionID      string
	user           *entity.User
	question       string
	documentSlugs  []string

	modelRequested       entity.ChatModel
	modelActual          entity.ChatModel
	modelOverrideApplied bool

	chunkSources      []entity.ChunkSource
	excludedDocuments []string
}

// stream runs §4.6 step 7 (stream tokens, buffer the full answer) and step
// 8 (log the Conversation), plus the partial-failure handling: a mid-stream
// error flushes the buffered prefix, appends a terminal error event, and
// logs the conversation with its error marker.
func (s *Service) stream(ctx context.Context, job streamJob) {
	defer close(job.out)

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	upstream, err := s.chat.StreamChat(streamCtx, job.req)
	if err != nil {
		job.out <- port.StreamEvent{Kind: port.StreamEventError, Err: err}
		s.logConversation(ctx, job, "", true)
		job.handle.Resolve(s.metadata(job))
		return
	}

	var answer strings.Builder
	var firstTokenAt time.Time
	errored := false
	idleTimeout := s.chatCfg.IdleTokenTimeout()
	timer := time.NewTimer(idleTimeout)
	defer timer.Stop()

loop:
	for {
		select {
		case ev, ok := <-upstream:
			if !ok {
				break loop
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(idleTimeout)

			switch ev.Kind {
			case port.StreamEventContent:
				if firstTokenAt.IsZero() {
					firstTokenAt = time.Now()
				}
				answer.WriteString(ev.Content)
				job.out <- ev
			case port.StreamEventDone:
				job.out <- ev
				break loop
			case port.StreamEventError:
				errored = true
				job.out <- ev
				break loop
			}
		case <-timer.C:
			errored = true
			cancel()
			job.out <- port.StreamEvent{Kind: port.StreamEventError, Err: entity.ErrProviderTimeout}
			break loop
		case <-ctx.Done():
			errored = true
			cancel()
			break loop
		}
	}

	total := time.Since(job.started)
	var firstToken time.Duration
	if !firstTokenAt.IsZero() {
		firstToken = firstTokenAt.Sub(job.started)
	}

	s.logConversation(ctx, job, answer.String(), errored)
	job.handle.Resolve(s.metadataWithTimings(job, total, firstToken))
}

func (s *Service) metadata(job streamJob) usecase.AnswerMetadata {
	return s.metadataWithTimings(job, time.Since(job.started), 0)
}

func (s *Service) metadataWithTimings(job streamJob, total, firstToken time.Duration) usecase.AnswerMetadata {
	return usecase.AnswerMetadata{
		ConversationID:       job.conversationID,
		SessionID:            job.sessionID,
		ModelRequested:       job.modelRequested,
		ModelActual:          job.modelActual,
		ModelOverrideApplied: job.modelOverrideApplied,
		ChunksUsed:           len(job.chunkSources),
		ChunkSources:         job.chunkSources,
		ExcludedDocuments:    job.excludedDocuments,
		Timings: entity.Timings{
			EmbedMillis:      job.embedDuration.Milliseconds(),
			RetrieveMillis:   job.retrieveDuration.Milliseconds(),
			FirstTokenMillis: firstToken.Milliseconds(),
			TotalMillis:      total.Milliseconds(),
		},
	}
}

func (s *Service) logConversation(ctx context.Context, job streamJob, answer string, errored bool) {
	now := time.Now().UTC()
	var userID *string
	if job.user != nil {
		userID = &job.user.ID
	}
	conv := &entity.Conversation{
		ID:                   job.conversationID,
		SessionID:            job.sessionID,
		UserID:               userID,
		DocumentSlugs:        job.documentSlugs,
		Question:             job.question,
		Answer:               answer,
		ModelRequested:       job.modelRequested,
		ModelActual:          job.modelActual,
		ModelOverrideApplied: job.modelOverrideApplied,
		RetrievalMetadata: entity.RetrievalMetadata{
			ChunkSources:      job.chunkSources,
			ExcludedDocuments: job.excludedDocuments,
			Timings: entity.Timings{
				EmbedMillis:    job.embedDuration.Milliseconds(),
				RetrieveMillis: job.retrieveDuration.Milliseconds(),
			},
		},
		CreatedAt:   job.started.UTC(),
		CompletedAt: &now,
		Errored:     errored,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		slog.ErrorContext(ctx, "failed to log conversation", slog.String("error", err.Error()), slog.String("conversation_id", job.conversationID))
	}
}

// Package orchestrator implements the RAG Orchestrator (C7): the
// resolve-check-retrieve-prompt-stream-log pipeline behind /chat and
// /chat/stream.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/core/service/access"
	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/service/retrieval"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

const maxDocuments = 5

// Service implements usecase.QueryUseCase.
type Service struct {
	registry      *registry.Registry
	access        *access.Resolver
	retrieval     *retrieval.Engine
	chat          port.ChatClient
	conversations port.ConversationRepository
	prompts       *config.PromptTemplates
	chatCfg       config.ChatConfig
}

// New creates a Service.
func New(
	reg *registry.Registry,
	accessResolver *access.Resolver,
	retrievalEngine *retrieval.Engine,
	chat port.ChatClient,
	conversations port.ConversationRepository,
	prompts *config.PromptTemplates,
	chatCfg config.ChatConfig,
) *Service {
	return &Service{
		registry:      reg,
		access:        accessResolver,
		retrieval:     retrievalEngine,
		chat:          chat,
		conversations: conversations,
		prompts:       prompts,
		chatCfg:       chatCfg,
	}
}

// Answer implements usecase.QueryUseCase. Steps 1–6 of §4.6 run
// synchronously and return a plain error on failure (access denial, unknown
// document, too many documents); once retrieval succeeds, streaming (step 7)
// and post-stream logging (step 8) happen in a background goroutine feeding
// the returned channel.
func (s *Service) Answer(ctx context.Context, cmd usecase.AnswerCommand) (<-chan port.StreamEvent, *usecase.AnswerMetadataHandle, error) {
	started := time.Now()

	docs, err := s.resolveDocuments(cmd.DocumentSlugs)
	if err != nil {
		return nil, nil, err
	}

	for _, doc := range docs {
		decision, err := s.access.CheckAccess(ctx, cmd.User, doc, nil)
		if err != nil {
			return nil, nil, err
		}
		if !decision.Allowed {
			return nil, nil, &entity.AccessDeniedError{DocumentSlug: doc.Slug, Reason: decision.Reason}
		}
	}

	actualModel, overrideApplied := s.resolveEffectiveModel(docs, cmd.RequestedModel)

	embeddingType, included, excluded := s.resolveEmbeddingType(docs)

	chunkLimit := s.resolveChunkLimit(included)

	var retrieveResult retrieval.Result
	if len(included) > 0 {
		retrieveResult, err = s.retrieval.Retrieve(ctx, cmd.Question, included, chunkLimit, embeddingType)
		if err != nil {
			return nil, nil, fmt.Errorf("retrieving context: %w", err)
		}
	}

	systemPrompt, sources := s.buildSystemPrompt(retrieveResult.Chunks, docs)

	sessionID := cmd.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	conversationID := uuid.NewString()

	req := port.ChatRequest{
		Model:    s.chatCfg.ModelFor(actualModel == entity.ChatModelReasoning),
		System:   systemPrompt,
		Messages: append(append([]port.ChatMessage{}, cmd.History...), port.ChatMessage{Role: port.ChatRoleUser, Content: cmd.Question}),
	}

	out := make(chan port.StreamEvent)
	handle := usecase.NewAnswerMetadataHandle()

	go s.stream(ctx, streamJob{
		req:                  req,
		out:                  out,
		handle:               handle,
		started:              started,
		embedDuration:        retrieveResult.EmbedDuration,
		retrieveDuration:     retrieveResult.SearchDuration,
		conversationID:       conversationID,
		sessionID:            sessionID,
		user:                 cmd.User,
		question:             cmd.Question,
		documentSlugs:        cmd.DocumentSlugs,
		modelRequested:       cmd.RequestedModel,
		modelActual:          actualModel,
		modelOverrideApplied: overrideApplied,
		chunkSources:         sources,
		excludedDocuments:    excluded,
	})

	return out, handle, nil
}

// resolveDocuments looks up every requested slug in the registry,
// rejecting unknown slugs and the N>5 / N=0 bounds of §6.2's doc syntax.
func (s *Service) resolveDocuments(slugs []string) ([]*entity.Document, error) {
	if len(slugs) == 0 {
		return nil, entity.ErrNoDocumentsRequested
	}
	if len(slugs) > maxDocuments {
		return nil, entity.ErrTooManyDocuments
	}
	docs := make([]*entity.Document, 0, len(slugs))
	for _, slug := range slugs {
		doc, err := s.registry.GetBySlug(slug)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// resolveEffectiveModel implements §4.6 step 3's highest-wins forced-model
// resolution: disagreeing per-document forced models fall back to the
// safest (reasoning) variant; a single shared forced model wins outright;
// absent that, a forced model shared by all documents' single owner
// applies; absent that, the caller's requested model is honored.
func (s *Service) resolveEffectiveModel(docs []*entity.Document, requested entity.ChatModel) (entity.ChatModel, bool) {
	forced := map[entity.ChatModel]bool{}
	for _, doc := range docs {
		if doc.ForcedModel != nil {
			forced[*doc.ForcedModel] = true
		}
	}
	switch len(forced) {
	case 0:
		// fall through to the owner-level check below
	case 1:
		for m := range forced {
			return m, m != requested
		}
	default:
		return entity.ChatModelReasoning, entity.ChatModelReasoning != requested
	}

	if owner := s.sharedOwner(docs); owner != nil && owner.ForcedModel != nil {
		return *owner.ForcedModel, *owner.ForcedModel != requested
	}

	if requested.IsValid() {
		return requested, false
	}
	return entity.ChatModelStandard, false
}

// sharedOwner returns the single owner every document belongs to, or nil
// if the documents span owners or include an unowned one.
func (s *Service) sharedOwner(docs []*entity.Document) *entity.Owner {
	var ownerSlug *string
	for _, doc := range docs {
		if doc.OwnerSlug == nil {
			return nil
		}
		if ownerSlug == nil {
			ownerSlug = doc.OwnerSlug
		} else if *ownerSlug != *doc.OwnerSlug {
			return nil
		}
	}
	if ownerSlug == nil {
		return nil
	}
	owner, err := s.registry.GetOwner(*ownerSlug)
	if err != nil {
		return nil
	}
	return owner
}

// resolveEmbeddingType implements §4.6 step 4: a single shared embedding
// type is used as-is; a mixed set is coerced to openai, and documents of
// any other type are excluded from retrieval (SUPPLEMENTED FEATURE #2).
func (s *Service) resolveEmbeddingType(docs []*entity.Document) (entity.EmbeddingType, []*entity.Document, []string) {
	types := map[entity.EmbeddingType]bool{}
	for _, doc := range docs {
		types[doc.EmbeddingType] = true
	}
	if len(types) <= 1 {
		var t entity.EmbeddingType = entity.EmbeddingTypeOpenAI
		for k := range types {
			t = k
		}
		return t, docs, nil
	}

	var included []*entity.Document
	var excluded []string
	for _, doc := range docs {
		if doc.EmbeddingType == entity.EmbeddingTypeOpenAI {
			included = append(included, doc)
		} else {
			excluded = append(excluded, doc.Slug)
		}
	}
	return entity.EmbeddingTypeOpenAI, included, excluded
}

// resolveChunkLimit resolves each included document's chunk limit via the
// retrieval engine and takes the most generous, leaving the engine's own
// per-document/overall partition caps to bound the actual multi-doc fan-out.
func (s *Service) resolveChunkLimit(docs []*entity.Document) int {
	limit := 0
	for _, doc := range docs {
		owner, _ := s.ownerOf(doc)
		candidate := s.retrieval.ResolveChunkLimit(doc, owner)
		if candidate > limit {
			limit = candidate
		}
	}
	return limit
}

func (s *Service) ownerOf(doc *entity.Document) (*entity.Owner, error) {
	if doc.OwnerSlug == nil {
		return nil, nil
	}
	return s.registry.GetOwner(*doc.OwnerSlug)
}

// buildSystemPrompt assembles the citation instructions, verbatim chunk
// text prefixed by footnote index, and the References section (§4.6 step
// 6). An empty chunk set produces the decline-and-rephrase prompt instead,
// with no References section (§4.6's empty-retrieval handling).
func (s *Service) buildSystemPrompt(chunks []entity.RetrievedChunk, docs []*entity.Document) (string, []entity.ChunkSource) {
	if len(chunks) == 0 {
		return s.prompts.EmptyRetrievalPrompt(), nil
	}

	titleBySlug := make(map[string]string, len(docs))
	for _, doc := range docs {
		titleBySlug[doc.Slug] = doc.Title
	}
	multiDoc := len(docs) > 1

	var context, references strings.Builder
	sources := make([]entity.ChunkSource, 0, len(chunks))
	for i, c := range chunks {
		idx := i + 1
		fmt.Fprintf(&context, "[%d] %s\n\n", idx, c.Text)
		if multiDoc {
			fmt.Fprintf(&references, "[%d] Page %d — %s\n", idx, c.Metadata.PageNumber, titleBySlug[c.DocumentSlug])
		} else {
			fmt.Fprintf(&references, "[%d] Page %d\n", idx, c.Metadata.PageNumber)
		}
		sources = append(sources, entity.ChunkSource{
			DocumentSlug: c.DocumentSlug,
			Ordinal:      c.Ordinal,
			PageNumber:   c.Metadata.PageNumber,
			Similarity:   c.Similarity,
		})
	}

	var prompt strings.Builder
	prompt.WriteString(s.prompts.CitationSystemPrompt())
	prompt.WriteString("\n\nContext:\n")
	prompt.WriteString(context.String())
	prompt.WriteString("References:\n")
	prompt.WriteString(references.String())
	return prompt.String(), sources
}

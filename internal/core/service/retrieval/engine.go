// Package retrieval implements the Retrieval Engine (C6): chunk-limit
// resolution, query embedding, and single/multi-document nearest-neighbor
// search with similarity-floor filtering.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

const (
	maxChunkLimit            = 200
	minChunkLimit            = 1
	perDocumentResultCap     = 5
	overallMultiDocResultCap = 25
)

// Result is the outcome of a Retrieve call. EmbedDuration and
// SearchDuration are surfaced separately so the orchestrator can log the
// embed/retrieve timing breakdown §4.6 step 8 requires without re-timing
// work this engine already did.
type Result struct {
	Chunks         []entity.RetrievedChunk
	EmbedDuration  time.Duration
	SearchDuration time.Duration
}

// Engine performs nearest-neighbor chunk retrieval.
type Engine struct {
	chunks          port.ChunkRepository
	embeddingByType map[entity.EmbeddingType]port.EmbeddingClient
	similarityFloor float64
	systemDefault   int
}

// New creates a retrieval Engine. embeddingByType must have an entry for
// every entity.EmbeddingType the deployment's documents use.
func New(chunks port.ChunkRepository, embeddingByType map[entity.EmbeddingType]port.EmbeddingClient, similarityFloor float64, systemDefaultChunkLimit int) *Engine {
	return &Engine{
		chunks:          chunks,
		embeddingByType: embeddingByType,
		similarityFloor: similarityFloor,
		systemDefault:   systemDefaultChunkLimit,
	}
}

// ResolveChunkLimit implements §4.5's highest-wins resolution: per-document
// override, then per-owner default, then the system default, clamped to
// [1, 200].
func (e *Engine) ResolveChunkLimit(doc *entity.Document, owner *entity.Owner) int {
	limit := e.systemDefault
	if owner != nil && owner.DefaultChunkLimit > 0 {
		limit = owner.DefaultChunkLimit
	}
	if doc != nil && doc.ChunkLimitOverride != nil {
		limit = *doc.ChunkLimitOverride
	}
	return clamp(limit, minChunkLimit, maxChunkLimit)
}

// Retrieve embeds queryText with the client matching embeddingType and
// searches the given documents, dropping results below the similarity
// floor. All documents must already share embeddingType; resolving
// mismatches across documents of different types is the orchestrator's
// job (§4.6 step 4), not this engine's.
func (e *Engine) Retrieve(ctx context.Context, queryText string, documents []*entity.Document, resolvedChunkLimit int, embeddingType entity.EmbeddingType) (Result, error) {
	if len(documents) == 0 {
		return Result{}, nil
	}

	client, ok := e.embeddingByType[embeddingType]
	if !ok {
		return Result{}, fmt.Errorf("no embedding client configured for type %q", embeddingType)
	}
	embedStart := time.Now()
	vectors, err := client.CreateEmbeddings(ctx, []string{queryText})
	embedDuration := time.Since(embedStart)
	if err != nil {
		return Result{}, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) == 0 {
		return Result{}, fmt.Errorf("embedding provider returned no vector for the query")
	}
	query := vectors[0]

	searchStart := time.Now()
	var raw []entity.RetrievedChunk
	if len(documents) == 1 {
		raw, err = e.chunks.SearchSingleDocument(ctx, embeddingType, documents[0].Slug, query, resolvedChunkLimit)
		if err != nil {
			return Result{}, fmt.Errorf("searching single document: %w", err)
		}
	} else {
		slugs := make([]string, len(documents))
		for i, d := range documents {
			slugs[i] = d.Slug
		}
		perDoc := ceilDiv(resolvedChunkLimit, len(documents))
		if perDoc > perDocumentResultCap {
			perDoc = perDocumentResultCap
		}
		overall := perDoc * len(documents)
		if overall > overallMultiDocResultCap {
			overall = overallMultiDocResultCap
		}
		raw, err = e.chunks.SearchMultiDocument(ctx, embeddingType, slugs, query, perDoc, overall)
		if err != nil {
			return Result{}, fmt.Errorf("searching multiple documents: %w", err)
		}
	}

	searchDuration := time.Since(searchStart)

	filtered := make([]entity.RetrievedChunk, 0, len(raw))
	for _, c := range raw {
		if c.Similarity >= e.similarityFloor {
			filtered = append(filtered, c)
		}
	}
	return Result{Chunks: filtered, EmbedDuration: embedDuration, SearchDuration: searchDuration}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return int(math.Ceil(float64(a) / float64(b)))
}

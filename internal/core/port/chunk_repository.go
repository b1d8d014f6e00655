package port

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/entity"
)

// ChunkRepository defines vector storage and retrieval for document
// chunks. Chunks of different embedding types live in separate backing
// tables (one per dimensionality); every method is parameterized by
// entity.EmbeddingType so the adapter can route to the right one.
type ChunkRepository interface {
	// InsertBatch inserts up to 50 chunks at once. The backing store
	// rejects rows whose document_slug has no matching document
	// (ErrOrphanChunkInsert).
	InsertBatch(ctx context.Context, embeddingType entity.EmbeddingType, chunks []*entity.Chunk) error

	// DeleteByDocument removes every chunk belonging to a document, used
	// both by cascade-on-delete and by retraining's atomic chunk swap.
	DeleteByDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string) error

	// SearchSingleDocument performs a cosine-distance nearest-neighbor
	// search restricted to one document, returning up to limit results
	// ordered by ascending distance (no threshold applied here — the
	// retrieval engine applies SimilarityFloor).
	SearchSingleDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string, query []float32, limit int) ([]entity.RetrievedChunk, error)

	// SearchMultiDocument performs a per-document partitioned
	// nearest-neighbor search (ROW_NUMBER() OVER PARTITION BY document),
	// returning up to perDocumentLimit chunks per document ordered
	// globally by ascending distance, capped at overallLimit total.
	SearchMultiDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlugs []string, query []float32, perDocumentLimit, overallLimit int) ([]entity.RetrievedChunk, error)
}

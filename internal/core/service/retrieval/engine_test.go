package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
)

type fakeChunkRepo struct {
	singleCalls int
	multiCalls  int
	lastSingleLimit int
	lastPerDoc      int
	lastOverall     int
	result          []entity.RetrievedChunk
}

func (f *fakeChunkRepo) InsertBatch(ctx context.Context, embeddingType entity.EmbeddingType, chunks []*entity.Chunk) error {
	return nil
}

func (f *fakeChunkRepo) DeleteByDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string) error {
	return nil
}

func (f *fakeChunkRepo) SearchSingleDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlug string, query []float32, limit int) ([]entity.RetrievedChunk, error) {
	f.singleCalls++
	f.lastSingleLimit = limit
	return f.result, nil
}

func (f *fakeChunkRepo) SearchMultiDocument(ctx context.Context, embeddingType entity.EmbeddingType, documentSlugs []string, query []float32, perDocumentLimit, overallLimit int) ([]entity.RetrievedChunk, error) {
	f.multiCalls++
	f.lastPerDoc = perDocumentLimit
	f.lastOverall = overallLimit
	return f.result, nil
}

type fakeEmbeddingClient struct {
	vector []float32
}

func (f *fakeEmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbeddingClient) Dimension() int     { return len(f.vector) }
func (f *fakeEmbeddingClient) ProviderName() string { return "fake" }

func TestResolveChunkLimit_HighestWins(t *testing.T) {
	e := New(&fakeChunkRepo{}, nil, 0.3, 50)

	// no override, no owner default -> system default
	assert.Equal(t, 50, e.ResolveChunkLimit(&entity.Document{}, nil))

	// owner default wins over system default
	owner := &entity.Owner{DefaultChunkLimit: 80}
	assert.Equal(t, 80, e.ResolveChunkLimit(&entity.Document{}, owner))

	// per-document override wins over owner default
	override := 12
	assert.Equal(t, 12, e.ResolveChunkLimit(&entity.Document{ChunkLimitOverride: &override}, owner))
}

func TestResolveChunkLimit_ClampedToBounds(t *testing.T) {
	e := New(&fakeChunkRepo{}, nil, 0.3, 50)
	huge := 9000
	assert.Equal(t, 200, e.ResolveChunkLimit(&entity.Document{ChunkLimitOverride: &huge}, nil))

	zero := 0
	assert.Equal(t, 1, e.ResolveChunkLimit(&entity.Document{ChunkLimitOverride: &zero}, nil))
}

func TestRetrieve_SingleDocumentSearchesAndFiltersByFloor(t *testing.T) {
	repo := &fakeChunkRepo{result: []entity.RetrievedChunk{
		{Chunk: entity.Chunk{DocumentSlug: "doc-a"}, Similarity: 0.9},
		{Chunk: entity.Chunk{DocumentSlug: "doc-a"}, Similarity: 0.1},
	}}
	clients := map[entity.EmbeddingType]port.EmbeddingClient{
		entity.EmbeddingTypeOpenAI: &fakeEmbeddingClient{vector: []float32{0.1, 0.2}},
	}
	e := New(repo, clients, 0.3, 50)

	doc := &entity.Document{Slug: "doc-a"}
	result, err := e.Retrieve(context.Background(), "what is a mitochondrion", []*entity.Document{doc}, 50, entity.EmbeddingTypeOpenAI)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.singleCalls)
	assert.Equal(t, 0, repo.multiCalls)
	assert.Equal(t, 50, repo.lastSingleLimit)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, 0.9, result.Chunks[0].Similarity)
}

func TestRetrieve_MultiDocumentAppliesPartitionCaps(t *testing.T) {
	repo := &fakeChunkRepo{}
	clients := map[entity.EmbeddingType]port.EmbeddingClient{
		entity.EmbeddingTypeOpenAI: &fakeEmbeddingClient{vector: []float32{0.1, 0.2}},
	}
	e := New(repo, clients, 0.3, 50)

	docs := []*entity.Document{
		{Slug: "doc-a"}, {Slug: "doc-b"}, {Slug: "doc-c"},
	}
	_, err := e.Retrieve(context.Background(), "query", docs, 50, entity.EmbeddingTypeOpenAI)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.multiCalls)
	// ceil(50/3) = 17, capped to 5 per document
	assert.Equal(t, 5, repo.lastPerDoc)
	// 5 * 3 documents = 15, under the 25 overall cap
	assert.Equal(t, 15, repo.lastOverall)
}

func TestRetrieve_MultiDocumentOverallCapAt25(t *testing.T) {
	repo := &fakeChunkRepo{}
	clients := map[entity.EmbeddingType]port.EmbeddingClient{
		entity.EmbeddingTypeOpenAI: &fakeEmbeddingClient{vector: []float32{0.1}},
	}
	e := New(repo, clients, 0.3, 50)

	docs := make([]*entity.Document, 5)
	for i := range docs {
		docs[i] = &entity.Document{Slug: "doc"}
	}
	_, err := e.Retrieve(context.Background(), "query", docs, 50, entity.EmbeddingTypeOpenAI)
	require.NoError(t, err)
	// ceil(50/5) = 10, capped to 5 per document; 5 * 5 = 25, at the overall cap
	assert.Equal(t, 5, repo.lastPerDoc)
	assert.Equal(t, 25, repo.lastOverall)
}

func TestRetrieve_NoDocumentsReturnsEmptyWithoutCallingRepo(t *testing.T) {
	repo := &fakeChunkRepo{}
	e := New(repo, nil, 0.3, 50)
	result, err := e.Retrieve(context.Background(), "query", nil, 50, entity.EmbeddingTypeOpenAI)
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 0, repo.singleCalls)
	assert.Equal(t, 0, repo.multiCalls)
}

func TestRetrieve_UnknownEmbeddingTypeErrors(t *testing.T) {
	e := New(&fakeChunkRepo{}, map[entity.EmbeddingType]port.EmbeddingClient{}, 0.3, 50)
	_, err := e.Retrieve(context.Background(), "query", []*entity.Document{{Slug: "doc-a"}}, 50, entity.EmbeddingTypeOpenAI)
	assert.Error(t, err)
}

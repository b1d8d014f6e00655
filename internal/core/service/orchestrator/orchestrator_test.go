package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

func modelPtr(m entity.ChatModel) *entity.ChatModel { return &m }

func ownerSlug(s string) *string { return &s }

func mustLoadPrompts(t *testing.T) *config.PromptTemplates {
	t.Helper()
	p, err := config.LoadPromptTemplates()
	require.NoError(t, err)
	return p
}

func TestResolveEffectiveModel_DisagreeingForcedModelsPickReasoning(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", ForcedModel: modelPtr(entity.ChatModelStandard)},
		{Slug: "b", ForcedModel: modelPtr(entity.ChatModelReasoning)},
	}
	actual, overridden := s.resolveEffectiveModel(docs, entity.ChatModelStandard)
	assert.Equal(t, entity.ChatModelReasoning, actual)
	assert.True(t, overridden)
}

func TestResolveEffectiveModel_SingleSharedForcedModelWins(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", ForcedModel: modelPtr(entity.ChatModelReasoning)},
		{Slug: "b", ForcedModel: modelPtr(entity.ChatModelReasoning)},
	}
	actual, overridden := s.resolveEffectiveModel(docs, entity.ChatModelStandard)
	assert.Equal(t, entity.ChatModelReasoning, actual)
	assert.True(t, overridden)
}

func TestResolveEffectiveModel_NoForcedModelHonorsRequested(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{{Slug: "a"}, {Slug: "b"}}
	actual, overridden := s.resolveEffectiveModel(docs, entity.ChatModelReasoning)
	assert.Equal(t, entity.ChatModelReasoning, actual)
	assert.False(t, overridden)
}

func TestResolveEffectiveModel_EmptyRequestedDefaultsToStandard(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{{Slug: "a"}}
	actual, overridden := s.resolveEffectiveModel(docs, "")
	assert.Equal(t, entity.ChatModelStandard, actual)
	assert.False(t, overridden)
}

func TestResolveEmbeddingType_SingleTypeIncludesAllDocuments(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", EmbeddingType: entity.EmbeddingTypeLocal},
		{Slug: "b", EmbeddingType: entity.EmbeddingTypeLocal},
	}
	embType, included, excluded := s.resolveEmbeddingType(docs)
	assert.Equal(t, entity.EmbeddingTypeLocal, embType)
	assert.Len(t, included, 2)
	assert.Empty(t, excluded)
}

func TestResolveEmbeddingType_MixedTypesCoercesToOpenAIAndExcludes(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", EmbeddingType: entity.EmbeddingTypeOpenAI},
		{Slug: "b", EmbeddingType: entity.EmbeddingTypeLocal},
	}
	embType, included, excluded := s.resolveEmbeddingType(docs)
	assert.Equal(t, entity.EmbeddingTypeOpenAI, embType)
	assert.Len(t, included, 1)
	assert.Equal(t, "a", included[0].Slug)
	assert.Equal(t, []string{"b"}, excluded)
}

func TestSharedOwner_ReturnsNilWhenOwnersDiffer(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", OwnerSlug: ownerSlug("acme")},
		{Slug: "b", OwnerSlug: ownerSlug("globex")},
	}
	assert.Nil(t, s.sharedOwner(docs))
}

func TestSharedOwner_ReturnsNilWhenAnyDocumentUnowned(t *testing.T) {
	s := &Service{}
	docs := []*entity.Document{
		{Slug: "a", OwnerSlug: ownerSlug("acme")},
		{Slug: "b"},
	}
	assert.Nil(t, s.sharedOwner(docs))
}

func TestBuildSystemPrompt_EmptyChunksUsesDeclinePrompt(t *testing.T) {
	s := &Service{prompts: mustLoadPrompts(t)}
	prompt, sources := s.buildSystemPrompt(nil, nil)
	assert.Equal(t, s.prompts.EmptyRetrievalPrompt(), prompt)
	assert.Empty(t, sources)
}

func TestBuildSystemPrompt_MultiDocIncludesTitleInReferences(t *testing.T) {
	s := &Service{prompts: mustLoadPrompts(t)}
	docs := []*entity.Document{
		{Slug: "doc-a", Title: "Cell Biology"},
		{Slug: "doc-b", Title: "Astrophysics"},
	}
	chunks := []entity.RetrievedChunk{
		{Chunk: entity.Chunk{DocumentSlug: "doc-a", Text: "mitochondria", Metadata: entity.ChunkMetadata{PageNumber: 2}}, Similarity: 0.8},
	}
	prompt, sources := s.buildSystemPrompt(chunks, docs)
	assert.Contains(t, prompt, "[1] mitochondria")
	assert.Contains(t, prompt, "Page 2")
	assert.Contains(t, prompt, "Cell Biology")
	assert.Len(t, sources, 1)
	assert.Equal(t, "doc-a", sources[0].DocumentSlug)
}

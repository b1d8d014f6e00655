//go:build integration

package testhelper

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/controller"
	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/middleware"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/chunkrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/conversationrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/documentrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/ownerrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/processinglogrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userdocumentrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/extractor"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	accesssvc "github.com/ragsvc/rag-engine/internal/core/service/access"
	"github.com/ragsvc/rag-engine/internal/core/service/chunker"
	"github.com/ragsvc/rag-engine/internal/core/service/concurrency"
	conversationsvc "github.com/ragsvc/rag-engine/internal/core/service/conversationapi"
	healthsvc "github.com/ragsvc/rag-engine/internal/core/service/health"
	"github.com/ragsvc/rag-engine/internal/core/service/ingestion"
	"github.com/ragsvc/rag-engine/internal/core/service/orchestrator"
	"github.com/ragsvc/rag-engine/internal/core/service/processinglog"
	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/service/retrieval"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// TestServer wraps an httptest.Server with helper methods for E2E testing.
type TestServer struct {
	Server *httptest.Server
	Engine *gin.Engine
	Pool   *pgxpool.Pool
	t      *testing.T
}

// NewTestServer creates a test HTTP server wired against the test database
// pool, with fake embedding/chat/storage adapters standing in for the
// external providers so integration tests never make real network calls.
func NewTestServer(t *testing.T, pool *pgxpool.Pool) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	owners := ownerrepo.New(pool)
	users := userrepo.New(pool)
	documents := documentrepo.New(pool)
	userDocs := userdocumentrepo.New(pool)
	processingLogs := processinglogrepo.New(pool)
	conversations := conversationrepo.New(pool)
	chunks := chunkrepo.New(pool)

	embeddingByType := map[entity.EmbeddingType]port.EmbeddingClient{
		entity.EmbeddingTypeOpenAI: newFakeEmbeddingClient(entity.EmbeddingTypeOpenAI),
		entity.EmbeddingTypeLocal:  newFakeEmbeddingClient(entity.EmbeddingTypeLocal),
	}
	embeddingClient := embeddingByType[entity.EmbeddingTypeOpenAI]
	chatClient := newFakeChatClient()
	storageAdapter := newFakeStorage()
	extractorFactory := extractor.NewFactory()

	reg := registry.New(documents, owners)
	concurrencyMgr := concurrency.NewManager(5)
	ck, err := chunker.New()
	if err != nil {
		t.Fatalf("creating chunker: %v", err)
	}
	logSink := processinglog.New(processingLogs, t.TempDir()+"/processing.log")
	accessResolver := accesssvc.New(users)
	retrievalEngine := retrieval.New(chunks, embeddingByType, 0.3, 50)

	processingCfg := config.ProcessingConfig{MaxConcurrent: 5, SimilarityFloor: 0.3, SystemChunkLimit: 50}
	embeddingCfg := config.EmbeddingConfig{Provider: "openai", BatchSize: 50}
	chatCfg := config.ChatConfig{Provider: "openai", StandardModel: "gpt-4o-mini", ReasoningModel: "o3-mini"}
	prompts, err := config.LoadPromptTemplates()
	if err != nil {
		t.Fatalf("loading prompt templates: %v", err)
	}

	ingestionSvc := ingestion.New(
		concurrencyMgr, reg, ck, logSink,
		storageAdapter, extractorFactory, chatClient, embeddingClient,
		documents, chunks, userDocs,
		embeddingCfg, chatCfg, processingCfg,
	)
	orchestratorSvc := orchestrator.New(reg, accessResolver, retrievalEngine, chatClient, conversations, prompts, chatCfg)
	healthSvc := healthsvc.New(reg, concurrencyMgr, processingCfg)
	checkAccessSvc := accesssvc.NewCheckAccessUseCase(reg, accessResolver)
	conversationSvc := conversationsvc.New(conversations)

	ingestionController := controller.NewIngestionController(ingestionSvc, ingestionSvc)
	queryController := controller.NewQueryController(orchestratorSvc)
	registryController := controller.NewRegistryController(healthSvc)
	accessController := controller.NewAccessController(checkAccessSvc)
	conversationController := controller.NewConversationController(conversationSvc)

	authCfg := &config.AuthConfig{}

	engine := gin.New()
	engine.Use(gin.Recovery())

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Operation())
	v1.Use(middleware.JWTAuth(authCfg))
	v1.Use(middleware.IdentityContext(users))

	queryController.RegisterRoutes(v1)
	accessController.RegisterRoutes(v1)
	conversationController.RegisterRoutes(v1)
	registryController.RegisterRoutes(v1)

	ingestionGroup := v1.Group("")
	ingestionGroup.Use(middleware.RequireAuth())
	ingestionController.RegisterRoutes(ingestionGroup)

	server := httptest.NewServer(engine)
	t.Cleanup(func() { server.Close() })

	return &TestServer{
		Server: server,
		Engine: engine,
		Pool:   pool,
		t:      t,
	}
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// Close closes the test server.
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// --- Fake adapters standing in for external providers in integration tests ---

type fakeEmbeddingClient struct {
	embeddingType entity.EmbeddingType
}

func newFakeEmbeddingClient(t entity.EmbeddingType) *fakeEmbeddingClient {
	return &fakeEmbeddingClient{embeddingType: t}
}

// CreateEmbeddings returns a deterministic vector per input, derived from
// its length, so repeated test runs get stable similarity ordering.
func (f *fakeEmbeddingClient) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	dim := f.Dimension()
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		seed := float32(len(text)%97 + 1)
		for j := range vec {
			vec[j] = seed / float32(j+1)
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbeddingClient) Dimension() int       { return f.embeddingType.Dimension() }
func (f *fakeEmbeddingClient) ProviderName() string { return string(f.embeddingType) + "-fake" }

type fakeChatClient struct{}

func newFakeChatClient() *fakeChatClient { return &fakeChatClient{} }

// StreamChat echoes a canned answer as a single content event, so
// orchestrator and ingestion tests can assert on the shape of the
// response without depending on a real model.
func (f *fakeChatClient) StreamChat(_ context.Context, req port.ChatRequest) (<-chan port.StreamEvent, error) {
	ch := make(chan port.StreamEvent, 2)
	go func() {
		defer close(ch)
		ch <- port.StreamEvent{Kind: port.StreamEventContent, Content: "test answer for: " + lastUserMessage(req)}
		ch <- port.StreamEvent{Kind: port.StreamEventDone}
	}()
	return ch, nil
}

func (f *fakeChatClient) Summarize(_ context.Context, _ string) (port.SummaryResult, error) {
	return port.SummaryResult{Title: "Test Document", Subtitle: "", Abstract: "a test summary", Keywords: []string{"test"}}, nil
}

func (f *fakeChatClient) ProviderName() string { return "fake" }

func lastUserMessage(req port.ChatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == port.ChatRoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("fake storage: key %q not found", key)
	}
	return data, nil
}

func (f *fakeStorage) GetURL(_ context.Context, key string) (string, error) {
	return "memory://" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

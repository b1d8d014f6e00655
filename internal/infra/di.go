package infra

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/controller"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/chunkrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/conversationrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/documentrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/ownerrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/processinglogrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userdocumentrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/database/postgres/userrepo"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/extractor"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/llm"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/llm/local"
	"github.com/ragsvc/rag-engine/internal/adapters/secondary/llm/openai"
	s3storage "github.com/ragsvc/rag-engine/internal/adapters/secondary/storage/s3"
	"github.com/ragsvc/rag-engine/internal/core/entity"
	"github.com/ragsvc/rag-engine/internal/core/port"
	accesssvc "github.com/ragsvc/rag-engine/internal/core/service/access"
	"github.com/ragsvc/rag-engine/internal/core/service/chunker"
	"github.com/ragsvc/rag-engine/internal/core/service/concurrency"
	conversationsvc "github.com/ragsvc/rag-engine/internal/core/service/conversationapi"
	"github.com/ragsvc/rag-engine/internal/core/service/gc"
	healthsvc "github.com/ragsvc/rag-engine/internal/core/service/health"
	"github.com/ragsvc/rag-engine/internal/core/service/ingestion"
	"github.com/ragsvc/rag-engine/internal/core/service/orchestrator"
	"github.com/ragsvc/rag-engine/internal/core/service/processinglog"
	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/service/retrieval"
	"github.com/ragsvc/rag-engine/internal/core/service/stuckjob"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
	"github.com/ragsvc/rag-engine/internal/infra/config"
	"github.com/ragsvc/rag-engine/internal/infra/scheduler"
	"github.com/ragsvc/rag-engine/internal/infra/server"
)

// ProviderSet is the Wire provider set for infrastructure components.
var ProviderSet = wire.NewSet(
	// Configuration
	config.Load,
	ProvideServerConfig,
	ProvideAuthConfig,
	ProvideStorageConfig,
	ProvideEmbeddingConfig,
	ProvideChatConfig,
	ProvideProcessingConfig,
	ProvideSchedulerConfig,
	config.LoadPromptTemplates,

	// Database
	ProvideDBPool,

	// Repositories
	ownerrepo.New,
	userrepo.New,
	ProvideUserRepository,
	ProvideUserOwnerAccessRepository,
	documentrepo.New,
	userdocumentrepo.New,
	processinglogrepo.New,
	conversationrepo.New,
	chunkrepo.New,

	// Embedding + chat providers
	ProvideEmbeddingClient,
	ProvideEmbeddingByType,
	ProvideChatClient,

	// Storage + extraction
	ProvideStorageAdapter,
	extractor.NewFactory,
	ProvideContentExtractorFactory,

	// Core services
	registry.New,
	concurrency.NewManager,
	chunker.New,
	ProvideProcessingLogSink,
	accesssvc.New,
	retrieval.New,
	ingestion.New,
	orchestrator.New,
	healthsvc.New,
	accesssvc.NewCheckAccessUseCase,
	conversationsvc.New,
	stuckjob.New,
	gc.New,

	// Usecase port bindings
	ProvideIngestionUseCase,
	ProvideUserDocumentUseCase,
	ProvideQueryUseCase,
	ProvideRegistryUseCase,
	ProvideAccessUseCase,
	ProvideConversationUseCase,

	// Controllers
	controller.NewIngestionController,
	controller.NewQueryController,
	controller.NewRegistryController,
	controller.NewAccessController,
	controller.NewConversationController,

	// HTTP Server
	server.NewHTTPServer,

	// Background Scheduler
	ProvideScheduler,

	// Initializer
	NewInitializer,
)

// ProvideServerConfig extracts server config from the main config.
func ProvideServerConfig(cfg *config.Config) *config.ServerConfig {
	return &cfg.Server
}

// ProvideAuthConfig extracts auth config from the main config.
func ProvideAuthConfig(cfg *config.Config) *config.AuthConfig {
	return &cfg.Auth
}

// ProvideStorageConfig extracts storage config from the main config.
func ProvideStorageConfig(cfg *config.Config) config.StorageConfig {
	return cfg.Storage
}

// ProvideEmbeddingConfig extracts embedding config from the main config.
func ProvideEmbeddingConfig(cfg *config.Config) config.EmbeddingConfig {
	return cfg.Embedding
}

// ProvideChatConfig extracts chat config from the main config.
func ProvideChatConfig(cfg *config.Config) config.ChatConfig {
	return cfg.Chat
}

// ProvideProcessingConfig extracts processing config from the main config.
func ProvideProcessingConfig(cfg *config.Config) config.ProcessingConfig {
	return cfg.Processing
}

// ProvideSchedulerConfig extracts scheduler config from the main config.
func ProvideSchedulerConfig(cfg *config.Config) *config.SchedulerConfig {
	return &cfg.Scheduler
}

// ProvideDBPool creates the database connection pool.
func ProvideDBPool(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(context.Background(), &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return pool, nil
}

// ProvideEmbeddingClient constructs the embedding client the ingestion
// pipeline uses to embed new chunks, dispatching on the configured
// provider.
func ProvideEmbeddingClient(cfg config.EmbeddingConfig) (port.EmbeddingClient, error) {
	return llm.NewEmbeddingClient(&cfg)
}

// ProvideEmbeddingByType builds both embedding clients (one per supported
// EmbeddingType) so the retrieval engine can query either chunk table
// regardless of which provider is currently configured as the ingestion
// default: a document embedded under one provider must remain queryable
// after the operator switches the default for new ingestions.
func ProvideEmbeddingByType(cfg config.EmbeddingConfig) (map[entity.EmbeddingType]port.EmbeddingClient, error) {
	openaiClient, err := openai.NewEmbeddingClient(&cfg, entity.EmbeddingTypeOpenAI.Dimension())
	if err != nil {
		return nil, fmt.Errorf("constructing openai embedding client: %w", err)
	}
	localClient, err := local.NewEmbeddingClient(&cfg, entity.EmbeddingTypeLocal.Dimension())
	if err != nil {
		return nil, fmt.Errorf("constructing local embedding client: %w", err)
	}
	return map[entity.EmbeddingType]port.EmbeddingClient{
		entity.EmbeddingTypeOpenAI: openaiClient,
		entity.EmbeddingTypeLocal:  localClient,
	}, nil
}

// ProvideChatClient constructs the configured chat-completion provider.
func ProvideChatClient(cfg config.ChatConfig, prompts *config.PromptTemplates) (port.ChatClient, error) {
	return llm.NewChatClient(&cfg, prompts)
}

// ProvideStorageAdapter constructs the S3/MinIO-compatible blob adapter for
// uploaded source documents.
func ProvideStorageAdapter(cfg config.StorageConfig) (port.StorageAdapter, error) {
	return s3storage.New(&s3storage.Config{
		Bucket:   cfg.Bucket,
		Region:   cfg.Region,
		Endpoint: cfg.Endpoint,
	})
}

// ProvideContentExtractorFactory adapts extractor.Factory to the
// port.ContentExtractorFactory the ingestion pipeline depends on.
func ProvideContentExtractorFactory(f *extractor.Factory) port.ContentExtractorFactory {
	return f
}

// processingLogPath is where the processing log sink mirrors entries as
// line-delimited JSON, alongside the database sink.
const processingLogPath = "processing.log"

// ProvideProcessingLogSink creates the dual-sink processing log.
func ProvideProcessingLogSink(repo port.ProcessingLogRepository) *processinglog.Sink {
	return processinglog.New(repo, processingLogPath)
}

// ProvideUserRepository adapts userrepo.Repository to the identity
// middleware's and usecase layer's port.
func ProvideUserRepository(repo *userrepo.Repository) port.UserRepository {
	return repo
}

// ProvideUserOwnerAccessRepository adapts userrepo.Repository to the
// narrower port the access resolver depends on.
func ProvideUserOwnerAccessRepository(repo *userrepo.Repository) port.UserOwnerAccessRepository {
	return repo
}

// ProvideIngestionUseCase adapts the ingestion service to its input port.
func ProvideIngestionUseCase(svc *ingestion.Service) usecase.IngestionUseCase {
	return svc
}

// ProvideUserDocumentUseCase adapts the ingestion service to the user
// document status/lifecycle port; both ports are implemented by the same
// service because status lookups need the same repositories as admission.
func ProvideUserDocumentUseCase(svc *ingestion.Service) usecase.UserDocumentUseCase {
	return svc
}

// ProvideQueryUseCase adapts the orchestrator to its input port.
func ProvideQueryUseCase(svc *orchestrator.Service) usecase.QueryUseCase {
	return svc
}

// ProvideRegistryUseCase adapts the health service to its input port.
func ProvideRegistryUseCase(svc *healthsvc.Service) usecase.RegistryUseCase {
	return svc
}

// ProvideAccessUseCase adapts the access check service to its input port.
func ProvideAccessUseCase(svc *accesssvc.CheckAccessUseCase) usecase.AccessUseCase {
	return svc
}

// ProvideConversationUseCase adapts the conversation API service to its
// input port.
func ProvideConversationUseCase(svc *conversationsvc.Service) usecase.ConversationUseCase {
	return svc
}

// ProvideScheduler creates the background job scheduler and registers the
// registry refresh, stuck-job sweep, and orphaned-blob collector jobs.
func ProvideScheduler(
	cfg *config.SchedulerConfig,
	processingCfg config.ProcessingConfig,
	storageCfg config.StorageConfig,
	reg *registry.Registry,
	sweeper *stuckjob.Sweeper,
	collector *gc.Collector,
) *scheduler.Scheduler {
	s := scheduler.New(cfg.Enabled)
	s.RegisterJob("refresh-registry", processingCfg.RegistryRefreshPeriod(), reg.Refresh)
	s.RegisterJob("stuck-job-sweep", processingCfg.StuckSweepInterval(), sweeper.Run)
	s.RegisterJob("orphaned-blob-gc", storageCfg.GarbageCollectionInterval(), collector.Run)
	return s
}

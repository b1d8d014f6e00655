package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/controller"
	"github.com/ragsvc/rag-engine/internal/adapters/primary/http/middleware"
	"github.com/ragsvc/rag-engine/internal/core/port"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// @title           RAG Document Service API
// @version         1.0
// @description     Multi-tenant retrieval-augmented generation over uploaded documents

// @contact.name    API Support
// @contact.email   support@example.com

// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT

// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and JWT token

// requestTimeout bounds a single request's processing time. Chat streaming
// can legitimately run long, so this is generous rather than tight.
const requestTimeout = 5 * time.Minute

// HTTPServer represents the HTTP server instance.
type HTTPServer struct {
	engine *gin.Engine
	config *config.ServerConfig
}

// NewHTTPServer creates a new HTTP server with all routes and middleware configured.
func NewHTTPServer(
	cfg *config.Config,
	authCfg *config.AuthConfig,
	users port.UserRepository,
	ingestionController *controller.IngestionController,
	queryController *controller.QueryController,
	registryController *controller.RegistryController,
	accessController *controller.AccessController,
	conversationController *controller.ConversationController,
) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	// Unauthenticated liveness probe, outside the versioned API group so
	// an orchestrator's health check never depends on auth configuration.
	engine.GET("/livez", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	})

	v1 := engine.Group("/api/v1")
	v1.Use(middleware.Operation())
	v1.Use(middleware.RequestTimeout(requestTimeout))
	v1.Use(middleware.JWTAuth(authCfg))
	v1.Use(middleware.IdentityContext(users))
	{
		// Query and access-probe routes carry their own per-document
		// access check (public/passcode/registered/forbidden), so they
		// accept anonymous callers.
		queryController.RegisterRoutes(v1)
		accessController.RegisterRoutes(v1)
		conversationController.RegisterRoutes(v1)
		registryController.RegisterRoutes(v1)

		// Ingestion requires a resolved identity: every uploaded document
		// belongs to the uploading user.
		ingestionGroup := v1.Group("")
		ingestionGroup.Use(middleware.RequireAuth())
		ingestionController.RegisterRoutes(ingestionGroup)
	}

	return &HTTPServer{
		engine: engine,
		config: &cfg.Server,
	}
}

// Start starts the HTTP server.
func (s *HTTPServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.config.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.config.ReadTimeoutDuration(),
		WriteTimeout: s.config.WriteTimeoutDuration(),
	}

	errChan := make(chan error, 1)

	go func() {
		slog.Info("starting HTTP server", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeoutDuration())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		slog.Info("HTTP server stopped gracefully")
		return nil

	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Engine returns the underlying Gin engine. Useful for testing.
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// corsMiddleware configures CORS for the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

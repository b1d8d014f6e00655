// Package health implements usecase.RegistryUseCase: the force-refresh and
// liveness/readiness reporting surfaced at the registry-refresh and
// health/ready endpoints. It is a thin composition over registry.Registry
// and concurrency.Manager, neither of which needs to know about the
// other's existence.
package health

import (
	"context"
	"time"

	"github.com/ragsvc/rag-engine/internal/core/service/concurrency"
	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
	"github.com/ragsvc/rag-engine/internal/infra/config"
)

// staleAfterMissedRefreshes is how many refresh periods may elapse before
// Health reports degraded due to a stale registry snapshot.
const staleAfterMissedRefreshes = 3

// Service implements usecase.RegistryUseCase.
type Service struct {
	registry    *registry.Registry
	concurrency *concurrency.Manager
	cfg         config.ProcessingConfig
}

// New creates a Service.
func New(reg *registry.Registry, conc *concurrency.Manager, cfg config.ProcessingConfig) *Service {
	return &Service{registry: reg, concurrency: conc, cfg: cfg}
}

// Refresh implements usecase.RegistryUseCase.
func (s *Service) Refresh(ctx context.Context) (usecase.RefreshResult, error) {
	if err := s.registry.Refresh(ctx); err != nil {
		return usecase.RefreshResult{}, err
	}
	return usecase.RefreshResult{DocumentCount: s.registry.DocumentCount()}, nil
}

// Health implements usecase.RegistryUseCase.
func (s *Service) Health(ctx context.Context) usecase.HealthStatus {
	age := time.Since(s.registry.RefreshedAt())
	load := s.concurrency.Load()

	status := "ok"
	staleThreshold := s.cfg.RegistryRefreshPeriod() * staleAfterMissedRefreshes
	if staleThreshold > 0 && age > staleThreshold {
		status = "degraded"
	}
	if s.registry.FailureStreak() > 0 {
		status = "degraded"
	}

	return usecase.HealthStatus{
		Status:      status,
		RegistryAge: age,
		ActiveJobs:  load.Active,
		MaxJobs:     load.Max,
	}
}

// Ready implements usecase.RegistryUseCase. A fresh deployment whose
// registry has never successfully refreshed (zero documents, no refresh
// timestamp) is not ready to serve traffic.
func (s *Service) Ready(ctx context.Context) bool {
	return s.registry.DocumentCount() > 0 && s.registry.FailureStreak() == 0
}

package access

import (
	"context"

	"github.com/ragsvc/rag-engine/internal/core/service/registry"
	"github.com/ragsvc/rag-engine/internal/core/usecase"
)

// CheckAccessUseCase implements usecase.AccessUseCase, the standalone
// /check-access probe the spec calls for so a client can test a passcode
// before submitting a full query.
type CheckAccessUseCase struct {
	registry *registry.Registry
	resolver *Resolver
}

// NewCheckAccessUseCase creates a CheckAccessUseCase.
func NewCheckAccessUseCase(reg *registry.Registry, resolver *Resolver) *CheckAccessUseCase {
	return &CheckAccessUseCase{registry: reg, resolver: resolver}
}

// CheckAccess implements usecase.AccessUseCase.
func (c *CheckAccessUseCase) CheckAccess(ctx context.Context, cmd usecase.AccessCheckCommand) (usecase.AccessCheckResult, error) {
	doc, err := c.registry.GetBySlug(cmd.DocumentSlug)
	if err != nil {
		return usecase.AccessCheckResult{}, err
	}
	decision, err := c.resolver.CheckAccess(ctx, cmd.User, doc, cmd.Passcode)
	if err != nil {
		return usecase.AccessCheckResult{}, err
	}
	return usecase.AccessCheckResult{Allowed: decision.Allowed, Reason: decision.Reason}, nil
}

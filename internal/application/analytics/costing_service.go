package analytics

import (
	"context"
	"fmt"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// CostingService rolls ingredient prices up into recipe costs
type CostingService struct {
	repo   analytics.CostingRepository
	logger *zap.Logger
}

// NewCostingService creates a new CostingService
func NewCostingService(repo analytics.CostingRepository, logger *zap.Logger) *CostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CostingService{repo: repo, logger: logger}
}

// Recalculate recomputes the cost of every recipe visible to outletID and
// writes back the ones that drifted by more than analytics.CostTolerance.
func (s *CostingService) Recalculate(ctx context.Context, outletID string) (*CostingResult, error) {
	log := logger.Ctx(ctx, s.logger).With(zap.String("outlet_id", outletID))

	recipes, err := s.repo.ListRecipes(ctx, outletID)
	if err != nil {
		return nil, shared.ErrInternal.WithCause(fmt.Errorf("list recipes: %w", err))
	}
	components, err := s.repo.ListComponents(ctx, outletID)
	if err != nil {
		return nil, shared.ErrInternal.WithCause(fmt.Errorf("list recipe components: %w", err))
	}
	ingredients, err := s.repo.ListIngredients(ctx, outletID)
	if err != nil {
		return nil, shared.ErrInternal.WithCause(fmt.Errorf("list ingredients: %w", err))
	}

	updates, unresolved := analytics.PlanCostUpdates(recipes, components, ingredients)
	if err := s.repo.UpdateRecipeCosts(ctx, updates); err != nil {
		return nil, shared.ErrInternal.WithCause(fmt.Errorf("update recipe costs: %w", err))
	}

	if unresolved > 0 {
		log.Warn("Recipe components reference unknown ingredients", zap.Int("count", unresolved))
	}
	log.Info("Recipe costs recalculated",
		zap.Int("examined", len(recipes)),
		zap.Int("updated", len(updates)),
	)
	return &CostingResult{
		Examined:              len(recipes),
		Updated:               len(updates),
		UnresolvedIngredients: unresolved,
	}, nil
}

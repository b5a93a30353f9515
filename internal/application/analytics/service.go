package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/kitchenops/backend/internal/application/analytics"

// Fold modes reported on metrics and logs
const (
	FoldSequential = "sequential"
	FoldSharded    = "sharded"
	FoldCached     = "cached"
)

// ServiceConfig tunes the menu engineering fold
type ServiceConfig struct {
	// ParallelThreshold is the filtered event count from which the fold is
	// sharded. Zero or less disables sharding.
	ParallelThreshold int
	Shards            int
	CacheTTL          time.Duration
}

// MenuAnalyticsService answers menu engineering queries
type MenuAnalyticsService struct {
	catalog analytics.CatalogReader
	cache   analytics.ResultCache
	metrics *telemetry.AnalyticsMetrics
	logger  *zap.Logger
	cfg     ServiceConfig
}

// NewMenuAnalyticsService creates a new MenuAnalyticsService.
// cache, metrics and logger may be nil.
func NewMenuAnalyticsService(
	catalog analytics.CatalogReader,
	cache analytics.ResultCache,
	metrics *telemetry.AnalyticsMetrics,
	logger *zap.Logger,
	cfg ServiceConfig,
) *MenuAnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Shards < 1 {
		cfg.Shards = 1
	}
	return &MenuAnalyticsService{
		catalog: catalog,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// GetMenuEngineering validates q and returns the classified dishes of the
// period, ordered by recipe id. No events in range gives an empty slice.
func (s *MenuAnalyticsService) GetMenuEngineering(ctx context.Context, q MenuEngineeringQuery) ([]DishAnalyticsResponse, error) {
	start := time.Now()

	r, err := analytics.NewDateRange(q.StartDate, q.EndDate)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, q.OutletID, telemetry.OutcomeInvalid, "", time.Since(start), 0)
		return nil, err
	}

	key := analytics.ResultCacheKey(r, q.OutletID)
	if rows, ok := s.cached(ctx, key); ok {
		s.metrics.RecordAnalysis(ctx, q.OutletID, telemetry.OutcomeCacheHit, FoldCached, time.Since(start), len(rows))
		return ToDishAnalyticsResponses(rows), nil
	}

	rows, mode, err := s.analyze(ctx, r, q.OutletID)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, q.OutletID, telemetry.OutcomeFailure, mode, time.Since(start), 0)
		return nil, err
	}
	s.store(ctx, key, rows)
	s.metrics.RecordAnalysis(ctx, q.OutletID, telemetry.OutcomeSuccess, mode, time.Since(start), len(rows))

	return ToDishAnalyticsResponses(rows), nil
}

// Refresh recomputes the analysis for a validated range, bypassing and then
// repopulating the result cache.
func (s *MenuAnalyticsService) Refresh(ctx context.Context, r analytics.DateRange, outletID string) ([]analytics.DishAnalytics, error) {
	start := time.Now()
	rows, mode, err := s.analyze(ctx, r, outletID)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, outletID, telemetry.OutcomeFailure, mode, time.Since(start), 0)
		return nil, err
	}
	s.store(ctx, analytics.ResultCacheKey(r, outletID), rows)
	s.metrics.RecordAnalysis(ctx, outletID, telemetry.OutcomeSuccess, mode, time.Since(start), len(rows))
	return rows, nil
}

func (s *MenuAnalyticsService) analyze(ctx context.Context, r analytics.DateRange, outletID string) ([]analytics.DishAnalytics, string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "menu_engineering.analyze")
	defer span.End()
	span.SetAttributes(
		attribute.String("analytics.period_start", r.Start),
		attribute.String("analytics.period_end", r.End),
		attribute.String("analytics.outlet_id", outletID),
	)

	log := logger.Ctx(ctx, s.logger).With(
		zap.String("start_date", r.Start),
		zap.String("end_date", r.End),
		zap.String("outlet_id", outletID),
	)

	events, menus, recipes, err := s.fetch(ctx, r, outletID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog read failed")
		log.Error("Menu engineering catalog read failed", zap.Error(err))
		return nil, "", analytics.ErrCatalogRead.WithCause(err)
	}

	filtered, malformed := analytics.FilterEvents(events, r, outletID)
	if malformed > 0 {
		log.Debug("Skipped sales events with unparseable dates", zap.Int("count", malformed))
	}

	acc, contributed, mode, err := s.fold(ctx, filtered, analytics.BuildMenuIndex(menus), analytics.BuildRecipeIndex(recipes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fold failed")
		log.Error("Menu engineering fold failed", zap.Error(err))
		return nil, mode, shared.ErrInternal.WithCause(err)
	}
	rows := analytics.Summarize(acc)

	skipped := malformed + len(filtered) - contributed
	s.metrics.RecordSkippedEvents(ctx, skipped)
	s.metrics.RecordClassifications(ctx, classificationLabels(rows))

	span.SetAttributes(
		attribute.Int("analytics.events", len(filtered)),
		attribute.Int("analytics.dishes", len(rows)),
		attribute.String("analytics.fold_mode", mode),
	)
	log.Debug("Menu engineering analysis complete",
		zap.Int("events", len(filtered)),
		zap.Int("skipped_events", skipped),
		zap.Int("dishes", len(rows)),
		zap.String("fold_mode", mode),
	)
	return rows, mode, nil
}

// fetch runs the three catalog reads concurrently. The first failure
// cancels the others and nothing is returned.
func (s *MenuAnalyticsService) fetch(ctx context.Context, r analytics.DateRange, outletID string) (
	[]analytics.SalesEvent, []analytics.Menu, []analytics.Recipe, error,
) {
	var (
		events  []analytics.SalesEvent
		menus   []analytics.Menu
		recipes []analytics.Recipe
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if events, err = s.catalog.FetchEvents(gctx, r, outletID); err != nil {
			return fmt.Errorf("fetch events: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if menus, err = s.catalog.FetchMenus(gctx); err != nil {
			return fmt.Errorf("fetch menus: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if recipes, err = s.catalog.FetchRecipes(gctx); err != nil {
			return fmt.Errorf("fetch recipes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return events, menus, recipes, nil
}

// fold accumulates events sequentially, or in contiguous shards merged in
// shard order once the configured threshold is reached.
func (s *MenuAnalyticsService) fold(
	ctx context.Context,
	events []analytics.SalesEvent,
	menus analytics.MenuIndex,
	recipes analytics.RecipeIndex,
) (*analytics.Accumulator, int, string, error) {
	if s.cfg.ParallelThreshold <= 0 || s.cfg.Shards < 2 || len(events) < s.cfg.ParallelThreshold {
		acc := analytics.NewAccumulator()
		return acc, acc.AddAll(events, menus, recipes), FoldSequential, nil
	}

	shards := min(s.cfg.Shards, len(events))
	size := (len(events) + shards - 1) / shards
	parts := make([]*analytics.Accumulator, shards)
	counts := make([]int, shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := range shards {
		lo := i * size
		hi := min(lo+size, len(events))
		parts[i] = analytics.NewAccumulator()
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			counts[i] = parts[i].AddAll(events[lo:hi], menus, recipes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, FoldSharded, err
	}

	merged, total := parts[0], counts[0]
	for i := 1; i < shards; i++ {
		merged.Merge(parts[i])
		total += counts[i]
	}
	return merged, total, FoldSharded, nil
}

func (s *MenuAnalyticsService) cached(ctx context.Context, key string) ([]analytics.DishAnalytics, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return nil, false
	}
	rows, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Ctx(ctx, s.logger).Warn("Result cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return rows, ok
}

func (s *MenuAnalyticsService) store(ctx context.Context, key string, rows []analytics.DishAnalytics) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, rows, s.cfg.CacheTTL); err != nil {
		logger.Ctx(ctx, s.logger).Warn("Result cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func classificationLabels(rows []analytics.DishAnalytics) map[string]int {
	counts := analytics.CountByClassification(rows)
	out := make(map[string]int, len(counts))
	for c, n := range counts {
		out[string(c)] = n
	}
	return out
}

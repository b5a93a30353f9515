package analytics

import (
	"context"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/mock"
)

// MockCatalogReader is a mock implementation of analytics.CatalogReader
type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) FetchEvents(ctx context.Context, r analytics.DateRange, outletID string) ([]analytics.SalesEvent, error) {
	args := m.Called(ctx, r, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.SalesEvent), args.Error(1)
}

func (m *MockCatalogReader) FetchMenus(ctx context.Context) ([]analytics.Menu, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Menu), args.Error(1)
}

func (m *MockCatalogReader) FetchRecipes(ctx context.Context) ([]analytics.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Recipe), args.Error(1)
}

// MockResultCache is a mock implementation of analytics.ResultCache
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string) ([]analytics.DishAnalytics, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]analytics.DishAnalytics), args.Bool(1), args.Error(2)
}

func (m *MockResultCache) Set(ctx context.Context, key string, rows []analytics.DishAnalytics, ttl time.Duration) error {
	args := m.Called(ctx, key, rows, ttl)
	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of analytics.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, s *analytics.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSnapshotRepository) FindLatest(ctx context.Context, outletID string) (*analytics.Snapshot, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analytics.Snapshot), args.Error(1)
}

// MockCostingRepository is a mock implementation of analytics.CostingRepository
type MockCostingRepository struct {
	mock.Mock
}

func (m *MockCostingRepository) ListRecipes(ctx context.Context, outletID string) ([]analytics.Recipe, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Recipe), args.Error(1)
}

func (m *MockCostingRepository) ListComponents(ctx context.Context, outletID string) ([]analytics.RecipeComponent, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.RecipeComponent), args.Error(1)
}

func (m *MockCostingRepository) ListIngredients(ctx context.Context, outletID string) ([]analytics.Ingredient, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.Ingredient), args.Error(1)
}

func (m *MockCostingRepository) UpdateRecipeCosts(ctx context.Context, updates []analytics.CostUpdate) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

// MockAnalyzer is a mock implementation of Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Refresh(ctx context.Context, r analytics.DateRange, outletID string) ([]analytics.DishAnalytics, error) {
	args := m.Called(ctx, r, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.DishAnalytics), args.Error(1)
}

// MockCostRecalculator is a mock implementation of CostRecalculator
type MockCostRecalculator struct {
	mock.Mock
}

func (m *MockCostRecalculator) Recalculate(ctx context.Context, outletID string) (*CostingResult, error) {
	args := m.Called(ctx, outletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CostingResult), args.Error(1)
}

// MockJobScheduler is a mock implementation of JobScheduler
type MockJobScheduler struct {
	mock.Mock
}

func (m *MockJobScheduler) ScheduleJob(jobType scheduler.JobType, outletID, periodStart, periodEnd string) (*scheduler.Job, error) {
	args := m.Called(jobType, outletID, periodStart, periodEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.Job), args.Error(1)
}

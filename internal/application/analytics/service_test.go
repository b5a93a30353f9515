package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var january = analytics.DateRange{Start: "2024-01-01", End: "2024-01-31"}

func scenarioCatalog() ([]analytics.Menu, []analytics.Recipe) {
	menus := []analytics.Menu{
		{ID: "m-banquet", RecipeIDs: []string{"r-b", "r-a"}, SellPrice: decimal.NewFromInt(45)},
	}
	recipes := []analytics.Recipe{
		{ID: "r-a", Name: "Lamb", TotalCost: decimal.NewFromInt(5)},
		{ID: "r-b", Name: "Salad", TotalCost: decimal.RequireFromString("1.2")},
	}
	return menus, recipes
}

func expectCatalog(c *MockCatalogReader, r analytics.DateRange, outletID string, events []analytics.SalesEvent) {
	menus, recipes := scenarioCatalog()
	c.On("FetchEvents", mock.Anything, r, outletID).Return(events, nil)
	c.On("FetchMenus", mock.Anything).Return(menus, nil)
	c.On("FetchRecipes", mock.Anything).Return(recipes, nil)
}

func TestMenuAnalyticsService_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query MenuEngineeringQuery
		want  error
	}{
		{"missing start", MenuEngineeringQuery{EndDate: "2024-01-31"}, analytics.ErrStartDateRequired},
		{"missing end", MenuEngineeringQuery{StartDate: "2024-01-01"}, analytics.ErrEndDateRequired},
		{"unparseable start", MenuEngineeringQuery{StartDate: "yesterday", EndDate: "2024-01-31"}, analytics.ErrInvalidStartDate},
		{"unparseable end", MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-13-01"}, analytics.ErrInvalidEndDate},
		{"inverted range", MenuEngineeringQuery{StartDate: "2024-02-01", EndDate: "2024-01-31"}, analytics.ErrInvertedRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			svc := NewMenuAnalyticsService(catalog, nil, nil, nil, ServiceConfig{})

			rows, err := svc.GetMenuEngineering(context.Background(), tt.query)
			assert.Nil(t, rows)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INVALID_INPUT", de.Code)
			catalog.AssertNotCalled(t, "FetchEvents", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMenuAnalyticsService_SplitsMenuPrice(t *testing.T) {
	catalog := new(MockCatalogReader)
	expectCatalog(catalog, january, "", []analytics.SalesEvent{
		{ID: "e1", Date: "2024-01-10", MenuID: "m-banquet", Pax: 20},
	})
	svc := NewMenuAnalyticsService(catalog, nil, nil, nil, ServiceConfig{})

	rows, err := svc.GetMenuEngineering(context.Background(), MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	lamb, salad := rows[0], rows[1]
	assert.Equal(t, "r-a", lamb.RecipeID)
	assert.Equal(t, "Lamb", lamb.RecipeName)
	assert.Equal(t, int64(20), lamb.TotalOrders)
	assert.InDelta(t, 450, lamb.TotalRevenue, 1e-9)
	assert.InDelta(t, 350, lamb.TotalProfit, 1e-9)
	assert.InDelta(t, 17.5, lamb.AvgProfitPerServing, 1e-9)
	assert.Equal(t, "2024-01-10", lamb.LastOrdered)
	assert.Equal(t, 1.0, lamb.PopularityScore)
	assert.Equal(t, 0.4, lamb.ProfitabilityScore)
	assert.Equal(t, "cash-cow", lamb.Classification)

	assert.Equal(t, "r-b", salad.RecipeID)
	assert.InDelta(t, 450, salad.TotalRevenue, 1e-9)
	assert.InDelta(t, 426, salad.TotalProfit, 1e-9)
	assert.InDelta(t, 21.3, salad.AvgProfitPerServing, 1e-9)
	assert.Equal(t, 1.0, salad.ProfitabilityScore)
	assert.Equal(t, "star", salad.Classification)

	catalog.AssertExpectations(t)
}

func TestMenuAnalyticsService_FiltersOnCalendarDatesAndOutlet(t *testing.T) {
	catalog := new(MockCatalogReader)
	expectCatalog(catalog, january, "o1", []analytics.SalesEvent{
		{ID: "e1", Date: "2024-01-31T23:30:00Z", OutletID: "o1", MenuID: "m-banquet", Pax: 2},
		{ID: "e2", Date: "2024-01-05", OutletID: "o2", MenuID: "m-banquet", Pax: 50},
		{ID: "e3", Date: "2024-02-01", OutletID: "o1", MenuID: "m-banquet", Pax: 50},
		{ID: "e4", Date: "not a date", OutletID: "o1", MenuID: "m-banquet", Pax: 50},
		{ID: "e5", Date: "2024-01-07", OutletID: "o1", MenuID: "m-unknown", Pax: 50},
		{ID: "e6", Date: "2024-01-08", OutletID: "o1", Pax: 50},
	})
	svc := NewMenuAnalyticsService(catalog, nil, nil, nil, ServiceConfig{})

	rows, err := svc.GetMenuEngineering(context.Background(), MenuEngineeringQuery{
		StartDate: "2024-01-01", EndDate: "2024-01-31", OutletID: "o1",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, int64(2), r.TotalOrders)
		assert.Equal(t, "2024-01-31", r.LastOrdered)
	}
}

func TestMenuAnalyticsService_NoEvents(t *testing.T) {
	catalog := new(MockCatalogReader)
	expectCatalog(catalog, january, "", []analytics.SalesEvent{})
	svc := NewMenuAnalyticsService(catalog, nil, nil, nil, ServiceConfig{})

	rows, err := svc.GetMenuEngineering(context.Background(), MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestMenuAnalyticsService_ReadFailureIsInternal(t *testing.T) {
	sources := []string{"FetchEvents", "FetchMenus", "FetchRecipes"}
	for _, failing := range sources {
		t.Run(failing, func(t *testing.T) {
			menus, recipes := scenarioCatalog()
			storeErr := errors.New("store unavailable")
			catalog := new(MockCatalogReader)

			events := catalog.On("FetchEvents", mock.Anything, january, "").Maybe()
			menuCall := catalog.On("FetchMenus", mock.Anything).Maybe()
			recipeCall := catalog.On("FetchRecipes", mock.Anything).Maybe()
			events.Return([]analytics.SalesEvent{{ID: "e1", Date: "2024-01-02", MenuID: "m-banquet", Pax: 1}}, nil)
			menuCall.Return(menus, nil)
			recipeCall.Return(recipes, nil)
			switch failing {
			case "FetchEvents":
				events.Return(nil, storeErr)
			case "FetchMenus":
				menuCall.Return(nil, storeErr)
			case "FetchRecipes":
				recipeCall.Return(nil, storeErr)
			}

			svc := NewMenuAnalyticsService(catalog, nil, nil, nil, ServiceConfig{})
			rows, err := svc.GetMenuEngineering(context.Background(), MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31"})
			assert.Nil(t, rows)
			assert.ErrorIs(t, err, analytics.ErrCatalogRead)
			assert.ErrorIs(t, err, storeErr)

			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "INTERNAL_ERROR", de.Code)
			assert.NotContains(t, de.Message, "store unavailable")
		})
	}
}

func TestMenuAnalyticsService_ShardedFoldMatchesSequential(t *testing.T) {
	menus := []analytics.Menu{
		{ID: "m1", RecipeIDs: []string{"r1", "r2"}, SellPrice: decimal.RequireFromString("33.33")},
		{ID: "m2", RecipeIDs: []string{"r2", "r3", "r-missing"}, SellPrice: decimal.NewFromInt(20)},
		{ID: "m3", RecipeIDs: []string{"r4"}, SellPrice: decimal.RequireFromString("7.5")},
	}
	recipes := []analytics.Recipe{
		{ID: "r1", Name: "One", TotalCost: decimal.RequireFromString("4.1")},
		{ID: "r2", Name: "Two", TotalCost: decimal.RequireFromString("2.75")},
		{ID: "r3", Name: "Three", TotalCost: decimal.NewFromInt(12)},
		{ID: "r4", TotalCost: decimal.NewFromInt(1)},
	}
	var events []analytics.SalesEvent
	for i := range 997 {
		events = append(events, analytics.SalesEvent{
			ID:     fmt.Sprintf("e%d", i),
			Date:   fmt.Sprintf("2024-01-%02d", i%31+1),
			MenuID: fmt.Sprintf("m%d", i%4+1),
			Pax:    int64(i%9 + 1),
		})
	}

	run := func(cfg ServiceConfig) []DishAnalyticsResponse {
		catalog := new(MockCatalogReader)
		catalog.On("FetchEvents", mock.Anything, january, "").Return(events, nil)
		catalog.On("FetchMenus", mock.Anything).Return(menus, nil)
		catalog.On("FetchRecipes", mock.Anything).Return(recipes, nil)
		rows, err := NewMenuAnalyticsService(catalog, nil, nil, nil, cfg).
			GetMenuEngineering(context.Background(), MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31"})
		require.NoError(t, err)
		return rows
	}

	sequential := run(ServiceConfig{})
	sharded := run(ServiceConfig{ParallelThreshold: 1, Shards: 7})
	require.Len(t, sequential, 4)
	assert.Equal(t, sequential, sharded)
	assert.Equal(t, analytics.UnknownRecipeName, sequential[3].RecipeName)
}

func TestMenuAnalyticsService_Cache(t *testing.T) {
	query := MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31T10:00:00Z"}
	key := analytics.ResultCacheKey(january, "")
	ttl := 5 * time.Minute

	t.Run("hit skips the catalog", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		cache := new(MockResultCache)
		cached := []analytics.DishAnalytics{{
			DishMetrics:    analytics.DishMetrics{DishStat: analytics.DishStat{RecipeID: "r-cached", TotalRevenue: decimal.NewFromInt(9)}},
			Classification: analytics.ClassificationDog,
		}}
		cache.On("Get", mock.Anything, key).Return(cached, true, nil)

		svc := NewMenuAnalyticsService(catalog, cache, nil, nil, ServiceConfig{CacheTTL: ttl})
		rows, err := svc.GetMenuEngineering(context.Background(), query)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "r-cached", rows[0].RecipeID)
		assert.Equal(t, 9.0, rows[0].TotalRevenue)
		catalog.AssertNotCalled(t, "FetchMenus", mock.Anything)
	})

	t.Run("miss computes and stores", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		expectCatalog(catalog, january, "", []analytics.SalesEvent{{ID: "e1", Date: "2024-01-10", MenuID: "m-banquet", Pax: 1}})
		cache := new(MockResultCache)
		cache.On("Get", mock.Anything, key).Return(nil, false, nil)
		cache.On("Set", mock.Anything, key, mock.AnythingOfType("[]analytics.DishAnalytics"), ttl).Return(nil)

		svc := NewMenuAnalyticsService(catalog, cache, nil, nil, ServiceConfig{CacheTTL: ttl})
		rows, err := svc.GetMenuEngineering(context.Background(), query)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures are ignored", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		expectCatalog(catalog, january, "", []analytics.SalesEvent{{ID: "e1", Date: "2024-01-10", MenuID: "m-banquet", Pax: 1}})
		cache := new(MockResultCache)
		cache.On("Get", mock.Anything, key).Return(nil, false, errors.New("redis down"))
		cache.On("Set", mock.Anything, key, mock.Anything, ttl).Return(errors.New("redis down"))

		svc := NewMenuAnalyticsService(catalog, cache, nil, nil, ServiceConfig{CacheTTL: ttl})
		rows, err := svc.GetMenuEngineering(context.Background(), query)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("zero ttl never touches the cache", func(t *testing.T) {
		catalog := new(MockCatalogReader)
		expectCatalog(catalog, january, "", []analytics.SalesEvent{})
		cache := new(MockResultCache)

		svc := NewMenuAnalyticsService(catalog, cache, nil, nil, ServiceConfig{})
		_, err := svc.GetMenuEngineering(context.Background(), query)
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestMenuAnalyticsService_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := telemetry.NewAnalyticsMetrics(provider.Meter("test"))
	require.NoError(t, err)

	catalog := new(MockCatalogReader)
	expectCatalog(catalog, january, "", []analytics.SalesEvent{
		{ID: "e1", Date: "2024-01-10", MenuID: "m-banquet", Pax: 1},
		{ID: "e2", Date: "2024-01-11", MenuID: "m-missing", Pax: 1},
	})
	svc := NewMenuAnalyticsService(catalog, nil, metrics, nil, ServiceConfig{})
	ctx := context.Background()

	_, err = svc.GetMenuEngineering(ctx, MenuEngineeringQuery{StartDate: "2024-01-01", EndDate: "2024-01-31"})
	require.NoError(t, err)
	_, err = svc.GetMenuEngineering(ctx, MenuEngineeringQuery{StartDate: "2024-01-01"})
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	byOutcome := map[string]int64{}
	var skipped int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "kitchen_menu_engineering_requests_total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					v, _ := dp.Attributes.Value(telemetry.AttrOutcome)
					byOutcome[v.AsString()] += dp.Value
				}
			case "kitchen_sales_events_skipped_total":
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					skipped += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), byOutcome[telemetry.OutcomeSuccess])
	assert.Equal(t, int64(1), byOutcome[telemetry.OutcomeInvalid])
	assert.Equal(t, int64(1), skipped)
}

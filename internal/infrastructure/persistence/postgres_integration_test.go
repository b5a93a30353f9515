//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/migration"
	"github.com/kitchenops/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("analytics_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migration.Source{FS: migrations.FS}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	version, dirty, err := m.Version()
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(3), version)

	return db
}

func TestPostgres_RepositoriesOverMigratedSchema(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	catalog := NewGormCatalogRepository(db)
	seedCatalog(t, catalog)
	january := analytics.DateRange{Start: "2024-01-01", End: "2024-01-31"}

	t.Run("catalog", func(t *testing.T) {
		events, err := catalog.FetchEvents(ctx, january, "o1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "e1", events[0].ID)

		menus, err := catalog.FetchMenus(ctx)
		require.NoError(t, err)
		assert.Len(t, menus, 2)

		outlets, err := catalog.ListOutletIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"o1", "o2"}, outlets)
	})

	t.Run("negative pax satisfies the pax check", func(t *testing.T) {
		require.NoError(t, catalog.SaveEvents(ctx, []analytics.SalesEvent{
			{ID: "e-void", Date: "2023-12-31", MenuID: "m-lunch", Pax: -2},
		}))
		events, err := catalog.FetchEvents(ctx, analytics.DateRange{Start: "2023-12-31", End: "2023-12-31"}, "")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(0), events[0].Pax)
	})

	t.Run("snapshots", func(t *testing.T) {
		repo := NewGormSnapshotRepository(db)
		base := time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)
		older := snapshotFixture("", base)
		newer := snapshotFixture("", base.Add(time.Hour))
		require.NoError(t, repo.Save(ctx, older))
		require.NoError(t, repo.Save(ctx, newer))

		got, err := repo.FindLatest(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
		require.Len(t, got.Rows, 1)
		assert.True(t, dec("40").Equal(got.Rows[0].TotalRevenue))
	})

	t.Run("costing", func(t *testing.T) {
		seedCosting(t, db)
		repo := NewGormCostingRepository(db)

		recipes, err := repo.ListRecipes(ctx, "o1")
		require.NoError(t, err)
		comps, err := repo.ListComponents(ctx, "o1")
		require.NoError(t, err)
		ings, err := repo.ListIngredients(ctx, "o1")
		require.NoError(t, err)

		updates, _ := analytics.PlanCostUpdates(recipes, comps, ings)
		require.NotEmpty(t, updates)
		require.NoError(t, repo.UpdateRecipeCosts(ctx, updates))

		after, err := repo.ListRecipes(ctx, "o1")
		require.NoError(t, err)
		for _, r := range after {
			for _, u := range updates {
				if u.RecipeID == r.ID {
					assert.True(t, u.NewCost.Equal(r.TotalCost), r.ID)
				}
			}
		}
	})
}

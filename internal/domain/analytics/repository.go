package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CatalogReader is the read-only source of sales, menus and recipes.
// FetchEvents may pre-filter by range and outlet; callers filter again.
type CatalogReader interface {
	FetchEvents(ctx context.Context, r DateRange, outletID string) ([]SalesEvent, error)
	FetchMenus(ctx context.Context) ([]Menu, error)
	FetchRecipes(ctx context.Context) ([]Recipe, error)
}

// OutletProvider lists the outlets that have recorded sales.
type OutletProvider interface {
	ListOutletIDs(ctx context.Context) ([]string, error)
}

// Snapshot is a persisted menu engineering result for one outlet and period.
// An empty OutletID covers all outlets.
type Snapshot struct {
	ID          uuid.UUID
	OutletID    string
	PeriodStart string
	PeriodEnd   string
	DishCount   int
	Rows        []DishAnalytics
	ComputedAt  time.Time
}

// SnapshotRepository stores snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, s *Snapshot) error
	FindLatest(ctx context.Context, outletID string) (*Snapshot, error)
}

// CostingRepository reads recipe composition and writes recomputed costs.
// An empty outletID selects every outlet.
type CostingRepository interface {
	ListRecipes(ctx context.Context, outletID string) ([]Recipe, error)
	ListComponents(ctx context.Context, outletID string) ([]RecipeComponent, error)
	ListIngredients(ctx context.Context, outletID string) ([]Ingredient, error)
	UpdateRecipeCosts(ctx context.Context, updates []CostUpdate) error
}

// ResultCache holds classified rows for a recent query. Implementations
// report a miss with ok=false and a nil error.
type ResultCache interface {
	Get(ctx context.Context, key string) (rows []DishAnalytics, ok bool, err error)
	Set(ctx context.Context, key string, rows []DishAnalytics, ttl time.Duration) error
}

// ResultCacheKey identifies a query by its canonical range and outlet.
func ResultCacheKey(r DateRange, outletID string) string {
	return "menu-engineering:" + r.Start + ":" + r.End + ":" + outletID
}

package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/kitchenops/backend/internal/domain/analytics"
)

// CatalogExport is a JSON dump of the analytics inputs, as produced by the
// point-of-sale export and read by kitchenctl.
type CatalogExport struct {
	Sales   []analytics.SalesEvent `json:"sales"`
	Menus   []analytics.Menu       `json:"menus"`
	Recipes []analytics.Recipe     `json:"recipes"`
}

// LoadCatalogExport decodes an export. Unknown fields are rejected so a
// mistyped key does not silently drop a whole collection.
func LoadCatalogExport(r io.Reader) (*CatalogExport, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var exp CatalogExport
	if err := dec.Decode(&exp); err != nil {
		return nil, fmt.Errorf("decode catalog export: %w", err)
	}
	return &exp, nil
}

// LoadCatalogExportFile reads an export from disk
func LoadCatalogExportFile(path string) (*CatalogExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog export: %w", err)
	}
	defer f.Close()
	return LoadCatalogExport(f)
}

// MemoryCatalog serves an export as a CatalogReader and OutletProvider
type MemoryCatalog struct {
	export *CatalogExport
}

// NewMemoryCatalog wraps an export. A nil export behaves as empty.
func NewMemoryCatalog(export *CatalogExport) *MemoryCatalog {
	if export == nil {
		export = &CatalogExport{}
	}
	return &MemoryCatalog{export: export}
}

// FetchEvents narrows by outlet only. Export dates may be timestamps, so the
// date range is left to the caller's calendar filter.
func (c *MemoryCatalog) FetchEvents(ctx context.Context, _ analytics.DateRange, outletID string) ([]analytics.SalesEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]analytics.SalesEvent, 0, len(c.export.Sales))
	for _, ev := range c.export.Sales {
		if outletID == "" || ev.OutletID == outletID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// FetchMenus returns a copy of the exported menus
func (c *MemoryCatalog) FetchMenus(ctx context.Context) ([]analytics.Menu, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]analytics.Menu(nil), c.export.Menus...), nil
}

// FetchRecipes returns a copy of the exported recipes
func (c *MemoryCatalog) FetchRecipes(ctx context.Context) ([]analytics.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]analytics.Recipe(nil), c.export.Recipes...), nil
}

// ListOutletIDs returns the distinct non-empty outlets, sorted
func (c *MemoryCatalog) ListOutletIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, ev := range c.export.Sales {
		if ev.OutletID == "" {
			continue
		}
		if _, ok := seen[ev.OutletID]; ok {
			continue
		}
		seen[ev.OutletID] = struct{}{}
		ids = append(ids, ev.OutletID)
	}
	sort.Strings(ids)
	return ids, nil
}

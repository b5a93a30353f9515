package persistence

import (
	"context"
	"errors"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCatalogRepository reads sales, menus and recipes from the database
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new catalog repository
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FetchEvents returns the events in r, narrowed to outletID when it is set.
// service_date is stored canonically, so the range is applied in SQL.
func (r *GormCatalogRepository) FetchEvents(ctx context.Context, dr analytics.DateRange, outletID string) ([]analytics.SalesEvent, error) {
	var rows []models.SalesEventModel
	q := r.db.WithContext(ctx).
		Where("service_date BETWEEN ? AND ?", dr.Start, dr.End)
	if outletID != "" {
		q = q.Where("outlet_id = ?", outletID)
	}
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]analytics.SalesEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events, nil
}

// FetchMenus returns every menu
func (r *GormCatalogRepository) FetchMenus(ctx context.Context) ([]analytics.Menu, error) {
	var rows []models.MenuModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	menus := make([]analytics.Menu, 0, len(rows))
	var errs []error
	for i := range rows {
		m, err := rows[i].ToDomain()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		menus = append(menus, m)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return menus, nil
}

// FetchRecipes returns every recipe
func (r *GormCatalogRepository) FetchRecipes(ctx context.Context) ([]analytics.Recipe, error) {
	var rows []models.RecipeModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	recipes := make([]analytics.Recipe, len(rows))
	for i := range rows {
		recipes[i] = rows[i].ToDomain()
	}
	return recipes, nil
}

// ListOutletIDs returns the distinct outlets that have recorded sales
func (r *GormCatalogRepository) ListOutletIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.SalesEventModel{}).
		Where("outlet_id <> ''").
		Distinct("outlet_id").
		Order("outlet_id").
		Pluck("outlet_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveEvents upserts sales events, canonicalizing their dates
func (r *GormCatalogRepository) SaveEvents(ctx context.Context, events []analytics.SalesEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]*models.SalesEventModel, 0, len(events))
	for _, ev := range events {
		m, err := models.SalesEventModelFromDomain(ev)
		if err != nil {
			return err
		}
		rows = append(rows, m)
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

// SaveMenus upserts menus
func (r *GormCatalogRepository) SaveMenus(ctx context.Context, menus []analytics.Menu) error {
	if len(menus) == 0 {
		return nil
	}
	rows := make([]*models.MenuModel, 0, len(menus))
	for _, m := range menus {
		rows = append(rows, models.MenuModelFromDomain(m, ""))
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

// SaveRecipes upserts recipes
func (r *GormCatalogRepository) SaveRecipes(ctx context.Context, recipes []analytics.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	rows := make([]*models.RecipeModel, 0, len(recipes))
	for _, rec := range recipes {
		rows = append(rows, models.RecipeModelFromDomain(rec, ""))
	}
	return r.db.WithContext(ctx).Save(rows).Error
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCostingRepository reads recipe composition and writes rolled-up costs.
// Rows with an empty outlet_id are shared by every outlet.
type GormCostingRepository struct {
	db *gorm.DB
}

// NewGormCostingRepository creates a new costing repository
func NewGormCostingRepository(db *gorm.DB) *GormCostingRepository {
	return &GormCostingRepository{db: db}
}

func outletScope(outletID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if outletID == "" {
			return db
		}
		return db.Where("outlet_id IN ?", []string{outletID, ""})
	}
}

// ListRecipes returns the recipes visible to outletID
func (r *GormCostingRepository) ListRecipes(ctx context.Context, outletID string) ([]analytics.Recipe, error) {
	var rows []models.RecipeModel
	if err := r.db.WithContext(ctx).Scopes(outletScope(outletID)).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.Recipe, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ListComponents returns the components of the recipes visible to outletID
func (r *GormCostingRepository) ListComponents(ctx context.Context, outletID string) ([]analytics.RecipeComponent, error) {
	var rows []models.RecipeComponentModel
	q := r.db.WithContext(ctx).Order("recipe_id, id")
	if outletID != "" {
		sub := r.db.Model(&models.RecipeModel{}).Select("id").Where("outlet_id IN ?", []string{outletID, ""})
		q = q.Where("recipe_id IN (?)", sub)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.RecipeComponent, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ListIngredients returns the ingredients visible to outletID
func (r *GormCostingRepository) ListIngredients(ctx context.Context, outletID string) ([]analytics.Ingredient, error) {
	var rows []models.IngredientModel
	if err := r.db.WithContext(ctx).Scopes(outletScope(outletID)).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]analytics.Ingredient, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// UpdateRecipeCosts writes every new cost in one transaction
func (r *GormCostingRepository) UpdateRecipeCosts(ctx context.Context, updates []analytics.CostUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&models.RecipeModel{}).
				Where("id = ?", u.RecipeID).
				Updates(map[string]any{
					"total_cost":      u.NewCost,
					"cost_updated_at": now,
					"updated_at":      now,
				})
			if res.Error != nil {
				return fmt.Errorf("update cost of recipe %s: %w", u.RecipeID, res.Error)
			}
		}
		return nil
	})
}

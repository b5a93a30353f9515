package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// SalesEventModel is one service of a menu at an outlet.
// ServiceDate is always stored as YYYY-MM-DD so range filters can compare it directly.
type SalesEventModel struct {
	ID          string    `gorm:"column:id;size:64;primaryKey"`
	OutletID    string    `gorm:"column:outlet_id;size:64;not null;default:'';index:idx_sales_events_outlet_date,priority:1"`
	MenuID      string    `gorm:"column:menu_id;size:64;not null;default:''"`
	ServiceDate string    `gorm:"column:service_date;size:10;not null;index:idx_sales_events_outlet_date,priority:2"`
	Pax         int64     `gorm:"column:pax;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

// TableName returns the table name for GORM
func (SalesEventModel) TableName() string {
	return "sales_events"
}

// ToDomain converts the model to a domain sales event
func (m *SalesEventModel) ToDomain() analytics.SalesEvent {
	return analytics.SalesEvent{
		ID:       m.ID,
		Date:     m.ServiceDate,
		OutletID: m.OutletID,
		MenuID:   m.MenuID,
		Pax:      m.Pax,
	}
}

// SalesEventModelFromDomain builds a model, canonicalizing the event date.
// Negative pax is stored as 0, the same count the fold would use.
func SalesEventModelFromDomain(ev analytics.SalesEvent) (*SalesEventModel, error) {
	d, err := analytics.CanonicalDate(ev.Date)
	if err != nil {
		return nil, fmt.Errorf("sales event %s: %w", ev.ID, err)
	}
	pax := ev.Pax
	if pax < 0 {
		pax = 0
	}
	return &SalesEventModel{
		ID:          ev.ID,
		OutletID:    ev.OutletID,
		MenuID:      ev.MenuID,
		ServiceDate: d,
		Pax:         pax,
	}, nil
}

// MenuModel is a fixed-price menu. RecipeIDsJSON holds a JSON array of recipe ids.
type MenuModel struct {
	ID            string          `gorm:"column:id;size:64;primaryKey"`
	OutletID      string          `gorm:"column:outlet_id;size:64;not null;default:''"`
	Name          string          `gorm:"column:name;size:200"`
	SellPrice     decimal.Decimal `gorm:"column:sell_price;type:decimal(12,4);not null"`
	RecipeIDsJSON string          `gorm:"column:recipe_ids;not null;default:'[]'"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (MenuModel) TableName() string {
	return "menus"
}

// ToDomain converts the model to a domain menu. A recipe_ids value that is
// not a JSON array of strings is a data error.
func (m *MenuModel) ToDomain() (analytics.Menu, error) {
	ids := []string{}
	if m.RecipeIDsJSON != "" {
		if err := json.Unmarshal([]byte(m.RecipeIDsJSON), &ids); err != nil {
			return analytics.Menu{}, fmt.Errorf("menu %s: malformed recipe_ids: %w", m.ID, err)
		}
	}
	return analytics.Menu{ID: m.ID, RecipeIDs: ids, SellPrice: m.SellPrice}, nil
}

// MenuModelFromDomain builds a model from a domain menu
func MenuModelFromDomain(menu analytics.Menu, outletID string) *MenuModel {
	ids := menu.RecipeIDs
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	return &MenuModel{
		ID:            menu.ID,
		OutletID:      outletID,
		SellPrice:     menu.SellPrice,
		RecipeIDsJSON: string(raw),
	}
}

// RecipeModel is a dish with its per-serving cost
type RecipeModel struct {
	ID            string          `gorm:"column:id;size:64;primaryKey"`
	OutletID      string          `gorm:"column:outlet_id;size:64;not null;default:''"`
	Name          string          `gorm:"column:name;size:200;not null;default:''"`
	TotalCost     decimal.Decimal `gorm:"column:total_cost;type:decimal(12,4);not null"`
	CostUpdatedAt *time.Time      `gorm:"column:cost_updated_at"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (RecipeModel) TableName() string {
	return "recipes"
}

// ToDomain converts the model to a domain recipe
func (m *RecipeModel) ToDomain() analytics.Recipe {
	return analytics.Recipe{ID: m.ID, Name: m.Name, TotalCost: m.TotalCost}
}

// RecipeModelFromDomain builds a model from a domain recipe
func RecipeModelFromDomain(r analytics.Recipe, outletID string) *RecipeModel {
	return &RecipeModel{ID: r.ID, OutletID: outletID, Name: r.Name, TotalCost: r.TotalCost}
}

// IngredientModel is a purchasable ingredient
type IngredientModel struct {
	ID          string          `gorm:"column:id;size:64;primaryKey"`
	OutletID    string          `gorm:"column:outlet_id;size:64;not null;default:''"`
	Name        string          `gorm:"column:name;size:200;not null;default:''"`
	Unit        string          `gorm:"column:unit;size:20;not null;default:''"`
	CostPerUnit decimal.Decimal `gorm:"column:cost_per_unit;type:decimal(12,4);not null"`
	UpdatedAt   time.Time       `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (IngredientModel) TableName() string {
	return "ingredients"
}

// ToDomain converts the model to a domain ingredient
func (m *IngredientModel) ToDomain() analytics.Ingredient {
	return analytics.Ingredient{ID: m.ID, Name: m.Name, CostPerUnit: m.CostPerUnit}
}

// RecipeComponentModel is one ingredient line of a recipe
type RecipeComponentModel struct {
	ID           uint            `gorm:"column:id;primaryKey;autoIncrement"`
	RecipeID     string          `gorm:"column:recipe_id;size:64;not null;index"`
	IngredientID string          `gorm:"column:ingredient_id;size:64;not null"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:decimal(12,4);not null"`
	YieldFactor  decimal.Decimal `gorm:"column:yield_factor;type:decimal(5,4);not null;default:1"`
}

// TableName returns the table name for GORM
func (RecipeComponentModel) TableName() string {
	return "recipe_components"
}

// ToDomain converts the model to a domain recipe component
func (m *RecipeComponentModel) ToDomain() analytics.RecipeComponent {
	return analytics.RecipeComponent{
		RecipeID:     m.RecipeID,
		IngredientID: m.IngredientID,
		Quantity:     m.Quantity,
		YieldFactor:  m.YieldFactor,
	}
}

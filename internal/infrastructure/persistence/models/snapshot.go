package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// SnapshotModel is a persisted menu engineering result. RowsJSON holds the
// classified rows in recipe id order.
type SnapshotModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OutletID    string    `gorm:"column:outlet_id;size:64;not null;default:'';index:idx_snapshots_outlet_computed,priority:1"`
	PeriodStart string    `gorm:"column:period_start;size:10;not null"`
	PeriodEnd   string    `gorm:"column:period_end;size:10;not null"`
	DishCount   int       `gorm:"column:dish_count;not null;default:0"`
	RowsJSON    string    `gorm:"column:rows;not null"`
	ComputedAt  time.Time `gorm:"column:computed_at;not null;index:idx_snapshots_outlet_computed,priority:2"`
}

// TableName returns the table name for GORM
func (SnapshotModel) TableName() string {
	return "menu_engineering_snapshots"
}

type snapshotRow struct {
	RecipeID            string          `json:"recipeId"`
	RecipeName          string          `json:"recipeName"`
	TotalOrders         int64           `json:"totalOrders"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	TotalProfit         decimal.Decimal `json:"totalProfit"`
	AvgProfitPerServing decimal.Decimal `json:"avgProfitPerServing"`
	LastOrdered         string          `json:"lastOrdered"`
	PopularityScore     float64         `json:"popularityScore"`
	ProfitabilityScore  float64         `json:"profitabilityScore"`
	Classification      string          `json:"classification"`
}

// SnapshotModelFromDomain builds a model from a domain snapshot
func SnapshotModelFromDomain(s *analytics.Snapshot) (*SnapshotModel, error) {
	rows := make([]snapshotRow, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, snapshotRow{
			RecipeID:            r.RecipeID,
			RecipeName:          r.RecipeName,
			TotalOrders:         r.TotalOrders,
			TotalRevenue:        r.TotalRevenue,
			TotalProfit:         r.TotalProfit,
			AvgProfitPerServing: r.AvgProfitPerServing,
			LastOrdered:         r.LastOrdered,
			PopularityScore:     r.PopularityScore,
			ProfitabilityScore:  r.ProfitabilityScore,
			Classification:      string(r.Classification),
		})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot rows: %w", err)
	}
	return &SnapshotModel{
		ID:          s.ID,
		OutletID:    s.OutletID,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		DishCount:   s.DishCount,
		RowsJSON:    string(raw),
		ComputedAt:  s.ComputedAt,
	}, nil
}

// ToDomain converts the model to a domain snapshot
func (m *SnapshotModel) ToDomain() (*analytics.Snapshot, error) {
	var rows []snapshotRow
	if err := json.Unmarshal([]byte(m.RowsJSON), &rows); err != nil {
		return nil, fmt.Errorf("snapshot %s: malformed rows: %w", m.ID, err)
	}

	out := make([]analytics.DishAnalytics, 0, len(rows))
	for _, r := range rows {
		out = append(out, analytics.DishAnalytics{
			DishMetrics: analytics.DishMetrics{
				DishStat: analytics.DishStat{
					RecipeID:     r.RecipeID,
					RecipeName:   r.RecipeName,
					TotalOrders:  r.TotalOrders,
					TotalRevenue: r.TotalRevenue,
					TotalProfit:  r.TotalProfit,
					LastOrdered:  r.LastOrdered,
				},
				AvgProfitPerServing: r.AvgProfitPerServing,
			},
			PopularityScore:    r.PopularityScore,
			ProfitabilityScore: r.ProfitabilityScore,
			Classification:     analytics.Classification(r.Classification),
		})
	}

	return &analytics.Snapshot{
		ID:          m.ID,
		OutletID:    m.OutletID,
		PeriodStart: m.PeriodStart,
		PeriodEnd:   m.PeriodEnd,
		DishCount:   m.DishCount,
		Rows:        out,
		ComputedAt:  m.ComputedAt,
	}, nil
}

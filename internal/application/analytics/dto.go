package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// MenuEngineeringQuery selects the period and outlet to analyze.
// Dates accept YYYY-MM-DD or an ISO-8601 timestamp.
type MenuEngineeringQuery struct {
	StartDate string `form:"start_date" binding:"required,isodate"`
	EndDate   string `form:"end_date" binding:"required,isodate"`
	OutletID  string `form:"outlet_id" binding:"omitempty,max=64"`
}

// DishAnalyticsResponse is one classified dish
type DishAnalyticsResponse struct {
	RecipeID            string  `json:"recipeId"`
	RecipeName          string  `json:"recipeName"`
	TotalRevenue        float64 `json:"totalRevenue"`
	TotalOrders         int64   `json:"totalOrders"`
	TotalProfit         float64 `json:"totalProfit"`
	AvgProfitPerServing float64 `json:"avgProfitPerServing"`
	LastOrdered         string  `json:"lastOrdered"`
	PopularityScore     float64 `json:"popularityScore"`
	ProfitabilityScore  float64 `json:"profitabilityScore"`
	Classification      string  `json:"classification"`
}

// SnapshotResponse is a persisted analysis
type SnapshotResponse struct {
	ID          uuid.UUID               `json:"id"`
	OutletID    string                  `json:"outletId,omitempty"`
	PeriodStart string                  `json:"periodStart"`
	PeriodEnd   string                  `json:"periodEnd"`
	DishCount   int                     `json:"dishCount"`
	ComputedAt  time.Time               `json:"computedAt"`
	Dishes      []DishAnalyticsResponse `json:"dishes"`
}

// TriggerSnapshotRequest asks for a background snapshot. Both dates must be
// given together; when omitted the configured trailing window is used.
type TriggerSnapshotRequest struct {
	OutletID  string `json:"outlet_id" binding:"omitempty,max=64"`
	StartDate string `json:"start_date" binding:"omitempty,isodate"`
	EndDate   string `json:"end_date" binding:"omitempty,isodate"`
}

// TriggerCostingRequest asks for a background recipe cost rollup
type TriggerCostingRequest struct {
	OutletID string `json:"outlet_id" binding:"omitempty,max=64"`
}

// JobAcceptedResponse acknowledges a queued job
type JobAcceptedResponse struct {
	JobID       uuid.UUID `json:"jobId"`
	JobType     string    `json:"jobType"`
	OutletID    string    `json:"outletId,omitempty"`
	PeriodStart string    `json:"periodStart,omitempty"`
	PeriodEnd   string    `json:"periodEnd,omitempty"`
	Status      string    `json:"status"`
}

// CostingResult summarizes a recipe cost rollup
type CostingResult struct {
	Examined              int `json:"examined"`
	Updated               int `json:"updated"`
	UnresolvedIngredients int `json:"unresolvedIngredients"`
}

// ToDishAnalyticsResponses converts domain rows, preserving order.
// The result is never nil.
func ToDishAnalyticsResponses(rows []analytics.DishAnalytics) []DishAnalyticsResponse {
	out := make([]DishAnalyticsResponse, len(rows))
	for i, r := range rows {
		out[i] = DishAnalyticsResponse{
			RecipeID:            r.RecipeID,
			RecipeName:          r.RecipeName,
			TotalRevenue:        toFloat64(r.TotalRevenue),
			TotalOrders:         r.TotalOrders,
			TotalProfit:         toFloat64(r.TotalProfit),
			AvgProfitPerServing: toFloat64(r.AvgProfitPerServing),
			LastOrdered:         r.LastOrdered,
			PopularityScore:     r.PopularityScore,
			ProfitabilityScore:  r.ProfitabilityScore,
			Classification:      string(r.Classification),
		}
	}
	return out
}

// ToSnapshotResponse converts a domain snapshot
func ToSnapshotResponse(s *analytics.Snapshot) *SnapshotResponse {
	return &SnapshotResponse{
		ID:          s.ID,
		OutletID:    s.OutletID,
		PeriodStart: s.PeriodStart,
		PeriodEnd:   s.PeriodEnd,
		DishCount:   s.DishCount,
		ComputedAt:  s.ComputedAt,
		Dishes:      ToDishAnalyticsResponses(s.Rows),
	}
}

func toFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

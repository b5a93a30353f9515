// Package analytics implements menu engineering: it joins sales events with
// menu composition and recipe costs, aggregates per-dish economics over a
// period and places every dish in the popularity/profitability matrix.
package analytics

import (
	"github.com/shopspring/decimal"
)

// UnknownRecipeName is reported for recipes stored without a name.
const UnknownRecipeName = "Unknown recipe"

// SalesEvent is one realized service that sold a menu to Pax guests.
// Date is a calendar date; readers may hand over timestamps and the
// engine normalizes them with CanonicalDate before use.
type SalesEvent struct {
	ID       string `json:"id"`
	Date     string `json:"date"`
	OutletID string `json:"outletId,omitempty"`
	MenuID   string `json:"menuId,omitempty"`
	Pax      int64  `json:"pax"`
}

// Menu is a fixed-price menu made of one serving of each listed recipe.
type Menu struct {
	ID        string          `json:"id"`
	RecipeIDs []string        `json:"recipeIds"`
	SellPrice decimal.Decimal `json:"sellPrice"`
}

// Recipe carries the fully loaded cost of one serving.
type Recipe struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// DishStat holds the running totals for one recipe during a single pass.
type DishStat struct {
	RecipeID     string
	RecipeName   string
	TotalOrders  int64
	TotalRevenue decimal.Decimal
	TotalProfit  decimal.Decimal
	LastOrdered  string
}

// DishMetrics is a DishStat with its derived per-serving average.
type DishMetrics struct {
	DishStat
	AvgProfitPerServing decimal.Decimal
}

// Classification is a quadrant of the menu engineering matrix.
type Classification string

const (
	ClassificationStar    Classification = "star"
	ClassificationCashCow Classification = "cash-cow"
	ClassificationPuzzle  Classification = "puzzle"
	ClassificationDog     Classification = "dog"
)

// AllClassifications lists every quadrant in matrix order.
func AllClassifications() []Classification {
	return []Classification{
		ClassificationStar,
		ClassificationCashCow,
		ClassificationPuzzle,
		ClassificationDog,
	}
}

// IsValid reports whether c is one of the four quadrants.
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationStar, ClassificationCashCow, ClassificationPuzzle, ClassificationDog:
		return true
	}
	return false
}

// DishAnalytics is a classified result row.
type DishAnalytics struct {
	DishMetrics
	PopularityScore    float64
	ProfitabilityScore float64
	Classification     Classification
}

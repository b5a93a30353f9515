package analytics

import "github.com/shopspring/decimal"

const (
	// PopularityThreshold is the share of the best seller's volume a dish
	// needs to count as popular.
	PopularityThreshold = 0.7

	// HighProfitabilityScore is given to dishes at or above the mean
	// average profit per serving.
	HighProfitabilityScore = 1.0

	// LowProfitabilityScore is given to every other dish. Only its
	// difference from HighProfitabilityScore affects the quadrant.
	LowProfitabilityScore = 0.4
)

// Baselines are the population figures every dish is scored against.
type Baselines struct {
	MaxOrders         int64
	AvgProfitBaseline decimal.Decimal
}

// ComputeBaselines returns the max order volume and the unweighted mean of
// average profit per serving. It returns zero baselines for empty input.
func ComputeBaselines(metrics []DishMetrics) Baselines {
	if len(metrics) == 0 {
		return Baselines{AvgProfitBaseline: decimal.Zero}
	}
	var maxOrders int64
	sum := decimal.Zero
	for _, m := range metrics {
		if m.TotalOrders > maxOrders {
			maxOrders = m.TotalOrders
		}
		sum = sum.Add(m.AvgProfitPerServing)
	}
	return Baselines{
		MaxOrders:         maxOrders,
		AvgProfitBaseline: sum.Div(decimal.NewFromInt(int64(len(metrics)))),
	}
}

// PopularityScore normalizes orders against the best seller, in [0, 1].
func (b Baselines) PopularityScore(orders int64) float64 {
	return float64(orders) / float64(max(1, b.MaxOrders))
}

// ProfitabilityScore is HighProfitabilityScore when avg reaches the
// baseline and LowProfitabilityScore otherwise.
func (b Baselines) ProfitabilityScore(avg decimal.Decimal) float64 {
	if avg.GreaterThanOrEqual(b.AvgProfitBaseline) {
		return HighProfitabilityScore
	}
	return LowProfitabilityScore
}

// ClassifyDish places a dish in the matrix from its two scores.
func ClassifyDish(popularity, profitability float64) Classification {
	popular := popularity >= PopularityThreshold
	profitable := profitability == HighProfitabilityScore
	switch {
	case popular && profitable:
		return ClassificationStar
	case popular:
		return ClassificationCashCow
	case profitable:
		return ClassificationPuzzle
	default:
		return ClassificationDog
	}
}

// Classify scores and labels every dish. Empty input gives empty output.
func Classify(metrics []DishMetrics) []DishAnalytics {
	if len(metrics) == 0 {
		return []DishAnalytics{}
	}
	b := ComputeBaselines(metrics)
	out := make([]DishAnalytics, 0, len(metrics))
	for _, m := range metrics {
		pop := b.PopularityScore(m.TotalOrders)
		prof := b.ProfitabilityScore(m.AvgProfitPerServing)
		out = append(out, DishAnalytics{
			DishMetrics:        m,
			PopularityScore:    pop,
			ProfitabilityScore: prof,
			Classification:     ClassifyDish(pop, prof),
		})
	}
	return out
}

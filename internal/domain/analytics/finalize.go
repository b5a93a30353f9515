package analytics

import "github.com/shopspring/decimal"

// Finalize derives the average profit per serving for each stat.
// A dish with no orders reports a zero average.
func Finalize(stats []DishStat) []DishMetrics {
	out := make([]DishMetrics, 0, len(stats))
	for _, s := range stats {
		avg := decimal.Zero
		if s.TotalOrders > 0 {
			avg = s.TotalProfit.Div(decimal.NewFromInt(s.TotalOrders))
		}
		out = append(out, DishMetrics{DishStat: s, AvgProfitPerServing: avg})
	}
	return out
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metric(id string, orders int64, avg string) DishMetrics {
	return DishMetrics{
		DishStat:            DishStat{RecipeID: id, RecipeName: id, TotalOrders: orders},
		AvgProfitPerServing: dec(avg),
	}
}

func TestClassifyDish(t *testing.T) {
	tests := []struct {
		name          string
		popularity    float64
		profitability float64
		want          Classification
	}{
		{"popular and profitable", 1.0, HighProfitabilityScore, ClassificationStar},
		{"popular at threshold", PopularityThreshold, HighProfitabilityScore, ClassificationStar},
		{"popular below average profit", 0.95, LowProfitabilityScore, ClassificationCashCow},
		{"unpopular and profitable", 0.69, HighProfitabilityScore, ClassificationPuzzle},
		{"unpopular below average profit", 0.1, LowProfitabilityScore, ClassificationDog},
		{"no orders at all", 0, HighProfitabilityScore, ClassificationPuzzle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDish(tt.popularity, tt.profitability))
		})
	}
}

func TestClassify_StarAndDog(t *testing.T) {
	rows := Classify([]DishMetrics{
		metric("signature", 100, "20"),
		metric("side", 10, "5"),
	})
	require.Len(t, rows, 2)

	assert.Equal(t, 1.0, rows[0].PopularityScore)
	assert.Equal(t, HighProfitabilityScore, rows[0].ProfitabilityScore)
	assert.Equal(t, ClassificationStar, rows[0].Classification)

	assert.InDelta(t, 0.1, rows[1].PopularityScore, 1e-12)
	assert.Equal(t, LowProfitabilityScore, rows[1].ProfitabilityScore)
	assert.Equal(t, ClassificationDog, rows[1].Classification)
}

func TestClassify_BaselineUsesUnweightedMean(t *testing.T) {
	// Volume-weighted the mean would be close to 2; unweighted it is 6.
	rows := Classify([]DishMetrics{
		metric("bulk", 1000, "2"),
		metric("niche", 1, "10"),
	})
	assert.Equal(t, ClassificationCashCow, rows[0].Classification)
	assert.Equal(t, ClassificationPuzzle, rows[1].Classification)
}

func TestClassify_AverageDishScoresHigh(t *testing.T) {
	rows := Classify([]DishMetrics{
		metric("a", 50, "3"),
		metric("b", 50, "3"),
		metric("c", 50, "3"),
	})
	for _, r := range rows {
		assert.Equal(t, HighProfitabilityScore, r.ProfitabilityScore, r.RecipeID)
		assert.Equal(t, ClassificationStar, r.Classification, r.RecipeID)
	}
}

func TestClassify_ZeroOrdersEverywhere(t *testing.T) {
	rows := Classify([]DishMetrics{
		metric("a", 0, "0"),
		metric("b", 0, "0"),
	})
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, 0.0, r.PopularityScore)
		assert.Equal(t, ClassificationPuzzle, r.Classification)
	}
}

func TestClassify_Empty(t *testing.T) {
	rows := Classify(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestClassify_QuadrantsAreExclusiveAndMatchScores(t *testing.T) {
	var in []DishMetrics
	for i, orders := range []int64{0, 3, 40, 69, 70, 71, 100, 250, 400, 399} {
		avg := []string{"-4", "0", "2.5", "7", "12.25"}[i%5]
		in = append(in, metric(string(rune('a'+i)), orders, avg))
	}
	rows := Classify(in)
	require.Len(t, rows, len(in))

	counts := CountByClassification(rows)
	total := 0
	for _, c := range AllClassifications() {
		total += counts[c]
	}
	assert.Equal(t, len(rows), total)

	for _, r := range rows {
		assert.True(t, r.Classification.IsValid())
		assert.GreaterOrEqual(t, r.PopularityScore, 0.0)
		assert.LessOrEqual(t, r.PopularityScore, 1.0)
		assert.Contains(t, []float64{HighProfitabilityScore, LowProfitabilityScore}, r.ProfitabilityScore)
		assert.Equal(t, ClassifyDish(r.PopularityScore, r.ProfitabilityScore), r.Classification)
	}
}

func TestFinalize(t *testing.T) {
	metrics := Finalize([]DishStat{
		{RecipeID: "a", TotalOrders: 4, TotalProfit: dec("10")},
		{RecipeID: "b", TotalOrders: 0, TotalProfit: dec("7")},
	})
	require.Len(t, metrics, 2)
	assertDecimal(t, "2.5", metrics[0].AvgProfitPerServing)
	assertDecimal(t, "0", metrics[1].AvgProfitPerServing)

	assert.Empty(t, Finalize(nil))
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_OrdersRowsByRecipeID(t *testing.T) {
	menus, recipes := scenarioCatalog()
	rows := Analyze([]SalesEvent{
		{ID: "e1", Date: "2024-03-01", MenuID: "m-tasting", Pax: 10},
		{ID: "e2", Date: "2024-03-02", MenuID: "m-lunch", Pax: 30},
	}, menus, recipes)

	require.Len(t, rows, 4)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.RecipeID)
	}
	assert.Equal(t, []string{"r-bread", "r-fish", "r-soup", "r-tart"}, ids)

	byID := map[string]DishAnalytics{}
	for _, r := range rows {
		byID[r.RecipeID] = r
	}
	assert.Equal(t, int64(40), byID["r-soup"].TotalOrders)
	assert.Equal(t, 1.0, byID["r-soup"].PopularityScore)
	assert.Equal(t, 0.25, byID["r-fish"].PopularityScore)
}

func TestAnalyze_NoEvents(t *testing.T) {
	menus, recipes := scenarioCatalog()
	rows := Analyze(nil, menus, recipes)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAnalyze_OnlyUnresolvableEvents(t *testing.T) {
	menus, recipes := scenarioCatalog()
	rows := Analyze([]SalesEvent{
		{ID: "e1", Date: "2024-03-01", MenuID: "m-broken", Pax: 10},
		{ID: "e2", Date: "2024-03-01", MenuID: "nope", Pax: 10},
		{ID: "e3", Date: "2024-03-01", Pax: 10},
	}, menus, recipes)
	assert.Empty(t, rows)
}

func TestSummarize_Nil(t *testing.T) {
	assert.Empty(t, Summarize(nil))
}

func TestCountByClassification(t *testing.T) {
	t.Run("every quadrant is present", func(t *testing.T) {
		counts := CountByClassification(nil)
		assert.Equal(t, map[Classification]int{
			ClassificationStar:    0,
			ClassificationCashCow: 0,
			ClassificationPuzzle:  0,
			ClassificationDog:     0,
		}, counts)
	})

	t.Run("tallies rows", func(t *testing.T) {
		counts := CountByClassification([]DishAnalytics{
			{DishMetrics: DishMetrics{DishStat: DishStat{RecipeID: "a"}}, Classification: ClassificationStar},
			{DishMetrics: DishMetrics{DishStat: DishStat{RecipeID: "b"}}, Classification: ClassificationStar},
			{DishMetrics: DishMetrics{DishStat: DishStat{RecipeID: "c"}}, Classification: ClassificationDog},
		})
		assert.Equal(t, 2, counts[ClassificationStar])
		assert.Equal(t, 1, counts[ClassificationDog])
		assert.Equal(t, 0, counts[ClassificationPuzzle])
		assert.Len(t, counts, len(AllClassifications()))
	})
}

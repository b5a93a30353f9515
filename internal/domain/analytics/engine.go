package analytics

import "sort"

// Analyze runs the full pipeline over events that are already filtered to
// the requested period and outlet. Rows are ordered by recipe id.
func Analyze(events []SalesEvent, menus []Menu, recipes []Recipe) []DishAnalytics {
	acc := NewAccumulator()
	acc.AddAll(events, BuildMenuIndex(menus), BuildRecipeIndex(recipes))
	return Summarize(acc)
}

// Summarize finalizes and classifies the totals held by acc.
func Summarize(acc *Accumulator) []DishAnalytics {
	if acc == nil || acc.Len() == 0 {
		return []DishAnalytics{}
	}
	rows := Classify(Finalize(acc.Stats()))
	SortByRecipeID(rows)
	return rows
}

// SortByRecipeID orders rows by ascending recipe id.
func SortByRecipeID(rows []DishAnalytics) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RecipeID < rows[j].RecipeID
	})
}

// CountByClassification tallies rows per quadrant. Every quadrant is
// present in the result, with zero when no dish falls in it.
func CountByClassification(rows []DishAnalytics) map[Classification]int {
	counts := make(map[Classification]int, 4)
	for _, c := range AllClassifications() {
		counts[c] = 0
	}
	for _, r := range rows {
		counts[r.Classification]++
	}
	return counts
}

package analytics

import "github.com/shopspring/decimal"

// CostTolerance is the smallest cost drift that warrants rewriting a
// recipe's stored cost.
var CostTolerance = decimal.NewFromFloat(0.01)

// Ingredient is a purchasable input with a unit cost.
type Ingredient struct {
	ID          string
	Name        string
	CostPerUnit decimal.Decimal
}

// RecipeComponent is a quantity of one ingredient in one serving.
// YieldFactor in (0, 1) accounts for trim and waste; zero means no loss.
type RecipeComponent struct {
	RecipeID     string
	IngredientID string
	Quantity     decimal.Decimal
	YieldFactor  decimal.Decimal
}

// CostUpdate is a recipe whose stored cost drifted from its components.
type CostUpdate struct {
	RecipeID string
	OldCost  decimal.Decimal
	NewCost  decimal.Decimal
}

// ComputeRecipeCost sums quantity times unit cost over the components.
// Components pointing at unknown ingredients cost nothing and are counted
// in the second return value.
func ComputeRecipeCost(components []RecipeComponent, ingredients map[string]Ingredient) (decimal.Decimal, int) {
	total := decimal.Zero
	unresolved := 0
	one := decimal.NewFromInt(1)
	for _, c := range components {
		ing, ok := ingredients[c.IngredientID]
		if !ok {
			unresolved++
			continue
		}
		qty := c.Quantity
		if c.YieldFactor.IsPositive() && c.YieldFactor.LessThan(one) {
			qty = qty.Div(c.YieldFactor)
		}
		total = total.Add(qty.Mul(ing.CostPerUnit))
	}
	return total, unresolved
}

// CostChanged reports whether two costs differ by more than CostTolerance.
func CostChanged(old, updated decimal.Decimal) bool {
	return old.Sub(updated).Abs().GreaterThan(CostTolerance)
}

// PlanCostUpdates recomputes every recipe that has components and returns
// the ones whose stored cost drifted. Recipes without components keep
// their manually entered cost, and so do recipes with a component whose
// ingredient is not in the given set: a partial sum would understate them.
// The second return value counts those unresolved components.
func PlanCostUpdates(recipes []Recipe, components []RecipeComponent, ingredients []Ingredient) ([]CostUpdate, int) {
	byRecipe := make(map[string][]RecipeComponent)
	for _, c := range components {
		byRecipe[c.RecipeID] = append(byRecipe[c.RecipeID], c)
	}
	ingIdx := make(map[string]Ingredient, len(ingredients))
	for _, ing := range ingredients {
		ingIdx[ing.ID] = ing
	}

	var updates []CostUpdate
	unresolved := 0
	for _, r := range recipes {
		comps := byRecipe[r.ID]
		if len(comps) == 0 {
			continue
		}
		cost, missing := ComputeRecipeCost(comps, ingIdx)
		if missing > 0 {
			unresolved += missing
			continue
		}
		if CostChanged(r.TotalCost, cost) {
			updates = append(updates, CostUpdate{RecipeID: r.ID, OldCost: r.TotalCost, NewCost: cost})
		}
	}
	return updates, unresolved
}

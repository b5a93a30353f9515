package analytics

// MenuIndex maps menu id to menu.
type MenuIndex map[string]Menu

// RecipeIndex maps recipe id to recipe.
type RecipeIndex map[string]Recipe

// BuildMenuIndex indexes menus by id. The last record wins on duplicate ids.
func BuildMenuIndex(menus []Menu) MenuIndex {
	idx := make(MenuIndex, len(menus))
	for _, m := range menus {
		idx[m.ID] = m
	}
	return idx
}

// BuildRecipeIndex indexes recipes by id. The last record wins on duplicate ids.
func BuildRecipeIndex(recipes []Recipe) RecipeIndex {
	idx := make(RecipeIndex, len(recipes))
	for _, r := range recipes {
		idx[r.ID] = r
	}
	return idx
}

// Resolve returns the recipes of m that exist in the index, in menu order.
// Unknown ids are dropped.
func (idx RecipeIndex) Resolve(m Menu) []Recipe {
	resolved := make([]Recipe, 0, len(m.RecipeIDs))
	for _, id := range m.RecipeIDs {
		if r, ok := idx[id]; ok {
			resolved = append(resolved, r)
		}
	}
	return resolved
}

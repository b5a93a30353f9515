package analytics

import (
	"github.com/shopspring/decimal"
)

// Accumulator folds sales events into per-recipe totals.
// Stats live in a slice; slots maps recipe id to its position.
// An Accumulator is not safe for concurrent use; shard the events and
// Merge the partial accumulators instead.
type Accumulator struct {
	stats []DishStat
	slots map[string]int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{slots: make(map[string]int)}
}

// Add folds one event. It returns false when the event contributed nothing:
// no menu, an unknown menu, or a menu none of whose recipes resolve.
// Event dates are expected in canonical form (see FilterEvents).
func (a *Accumulator) Add(ev SalesEvent, menus MenuIndex, recipes RecipeIndex) bool {
	if ev.MenuID == "" {
		return false
	}
	menu, ok := menus[ev.MenuID]
	if !ok {
		return false
	}
	resolved := recipes.Resolve(menu)
	if len(resolved) == 0 {
		return false
	}

	pax := ev.Pax
	if pax < 0 {
		pax = 0
	}
	paxDec := decimal.NewFromInt(pax)
	pricePerDish := menu.SellPrice.Div(decimal.NewFromInt(int64(len(resolved))))
	revenue := pricePerDish.Mul(paxDec)

	for _, r := range resolved {
		profit := pricePerDish.Sub(r.TotalCost).Mul(paxDec)
		s := a.slot(r)
		s.TotalOrders += pax
		s.TotalRevenue = s.TotalRevenue.Add(revenue)
		s.TotalProfit = s.TotalProfit.Add(profit)
		if s.LastOrdered == "" || ev.Date > s.LastOrdered {
			s.LastOrdered = ev.Date
		}
	}
	return true
}

// AddAll folds events in order and returns how many contributed.
func (a *Accumulator) AddAll(events []SalesEvent, menus MenuIndex, recipes RecipeIndex) int {
	n := 0
	for _, ev := range events {
		if a.Add(ev, menus, recipes) {
			n++
		}
	}
	return n
}

// Merge folds other into a. Additive fields are summed, LastOrdered takes
// the later date and a missing name is filled from other.
// Recipes first seen in other are appended after a's own.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for _, o := range other.stats {
		i, ok := a.slots[o.RecipeID]
		if !ok {
			a.slots[o.RecipeID] = len(a.stats)
			a.stats = append(a.stats, o)
			continue
		}
		s := &a.stats[i]
		s.TotalOrders += o.TotalOrders
		s.TotalRevenue = s.TotalRevenue.Add(o.TotalRevenue)
		s.TotalProfit = s.TotalProfit.Add(o.TotalProfit)
		if o.LastOrdered > s.LastOrdered {
			s.LastOrdered = o.LastOrdered
		}
		if s.RecipeName == "" {
			s.RecipeName = o.RecipeName
		}
	}
}

// Len returns the number of distinct recipes seen.
func (a *Accumulator) Len() int {
	return len(a.stats)
}

// Get returns the stat for a recipe id.
func (a *Accumulator) Get(recipeID string) (DishStat, bool) {
	i, ok := a.slots[recipeID]
	if !ok {
		return DishStat{}, false
	}
	return a.stats[i], true
}

// Stats returns a copy of all stats in first-seen order.
func (a *Accumulator) Stats() []DishStat {
	out := make([]DishStat, len(a.stats))
	copy(out, a.stats)
	return out
}

func (a *Accumulator) slot(r Recipe) *DishStat {
	if i, ok := a.slots[r.ID]; ok {
		return &a.stats[i]
	}
	name := r.Name
	if name == "" {
		name = UnknownRecipeName
	}
	a.slots[r.ID] = len(a.stats)
	a.stats = append(a.stats, DishStat{
		RecipeID:     r.ID,
		RecipeName:   name,
		TotalRevenue: decimal.Zero,
		TotalProfit:  decimal.Zero,
	})
	return &a.stats[len(a.stats)-1]
}

package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/kitchenops/backend/internal/domain/analytics"
	"github.com/kitchenops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCostingService_Recalculate(t *testing.T) {
	ctx := context.Background()
	recipes := []analytics.Recipe{
		{ID: "r-soup", TotalCost: decimal.NewFromInt(3)},
		{ID: "r-bread", TotalCost: decimal.RequireFromString("0.80")},
		{ID: "r-manual", TotalCost: decimal.NewFromInt(9)},
	}
	components := []analytics.RecipeComponent{
		{RecipeID: "r-soup", IngredientID: "i-onion", Quantity: decimal.NewFromInt(2), YieldFactor: decimal.NewFromInt(1)},
		{RecipeID: "r-soup", IngredientID: "i-gone", Quantity: decimal.NewFromInt(1), YieldFactor: decimal.NewFromInt(1)},
		{RecipeID: "r-bread", IngredientID: "i-flour", Quantity: decimal.RequireFromString("0.25"), YieldFactor: decimal.NewFromInt(1)},
	}
	ingredients := []analytics.Ingredient{
		{ID: "i-onion", CostPerUnit: decimal.NewFromInt(1)},
		{ID: "i-flour", CostPerUnit: decimal.NewFromInt(2)},
	}

	t.Run("writes drifted recipes and keeps partially resolved ones", func(t *testing.T) {
		repo := new(MockCostingRepository)
		repo.On("ListRecipes", ctx, "o1").Return(recipes, nil)
		repo.On("ListComponents", ctx, "o1").Return(components, nil)
		repo.On("ListIngredients", ctx, "o1").Return(ingredients, nil)
		repo.On("UpdateRecipeCosts", ctx, mock.MatchedBy(func(u []analytics.CostUpdate) bool {
			return len(u) == 1 && u[0].RecipeID == "r-bread" && u[0].NewCost.Equal(decimal.RequireFromString("0.5"))
		})).Return(nil)

		res, err := NewCostingService(repo, nil).Recalculate(ctx, "o1")
		require.NoError(t, err)
		assert.Equal(t, &CostingResult{Examined: 3, Updated: 1, UnresolvedIngredients: 1}, res)
		repo.AssertExpectations(t)
	})

	t.Run("repository failure is internal", func(t *testing.T) {
		repo := new(MockCostingRepository)
		repo.On("ListRecipes", ctx, "").Return(nil, errors.New("db gone"))

		res, err := NewCostingService(repo, nil).Recalculate(ctx, "")
		assert.Nil(t, res)
		assert.ErrorIs(t, err, shared.ErrInternal)
		repo.AssertNotCalled(t, "UpdateRecipeCosts", mock.Anything, mock.Anything)
	})

	t.Run("update failure is internal", func(t *testing.T) {
		repo := new(MockCostingRepository)
		repo.On("ListRecipes", ctx, "").Return(recipes, nil)
		repo.On("ListComponents", ctx, "").Return(components, nil)
		repo.On("ListIngredients", ctx, "").Return(ingredients, nil)
		repo.On("UpdateRecipeCosts", ctx, mock.Anything).Return(errors.New("deadlock"))

		_, err := NewCostingService(repo, nil).Recalculate(ctx, "")
		assert.ErrorIs(t, err, shared.ErrInternal)
	})
}

package shopping

import (
	"context"
	"fmt"

	"cookplanner/internal/recipe"
)

// Generator builds shopping lists from stored recipes.
type Generator struct {
	repo *recipe.Repository
}

// NewGenerator creates a new Generator.
func NewGenerator(repo *recipe.Repository) *Generator {
	return &Generator{repo: repo}
}

// FromRecipeIDs loads the given recipes and aggregates their ingredients.
// IDs with no stored recipe are skipped. scaleServings may be nil.
func (g *Generator) FromRecipeIDs(ctx context.Context, ids []int64, scaleServings map[int64]int) (*ShoppingList, error) {
	recipes, err := g.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes for shopping list: %w", err)
	}
	return Aggregate(recipes, scaleServings), nil
}

package shopping

import (
	"context"
	"path/filepath"
	"testing"

	"cookplanner/internal/database"
	"cookplanner/internal/recipe"
)

func TestGeneratorFromRecipeIDs(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	repo := recipe.NewRepository(db.SQL)

	idA, err := repo.Insert(ctx, recipe.RecipeExtract{
		TitleEN:  "A",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{NameEN: "soy sauce", Quantity: "2", Unit: "tbsp", Category: "pantry"},
		},
	}, recipe.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to insert recipe: %v", err)
	}

	idB, err := repo.Insert(ctx, recipe.RecipeExtract{
		TitleEN:  "B",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{NameEN: "soy sauce", Quantity: "1", Unit: "tbsp", Category: "pantry"},
		},
	}, recipe.SourceInfo{})
	if err != nil {
		t.Fatalf("Failed to insert recipe: %v", err)
	}

	gen := NewGenerator(repo)

	t.Run("MergesAcrossRecipes", func(t *testing.T) {
		list, err := gen.FromRecipeIDs(ctx, []int64{idA, idB}, nil)
		if err != nil {
			t.Fatalf("Failed to generate shopping list: %v", err)
		}
		items := list.ItemsIn("pantry")
		if len(items) != 1 {
			t.Fatalf("Expected 1 consolidated entry, got %d", len(items))
		}
		if items[0].Quantity != "3" {
			t.Errorf("Expected quantity '3', got '%s'", items[0].Quantity)
		}
	})

	t.Run("MissingIDsSkipped", func(t *testing.T) {
		list, err := gen.FromRecipeIDs(ctx, []int64{idA, 9999}, nil)
		if err != nil {
			t.Fatalf("Failed to generate shopping list: %v", err)
		}
		if list.Len() != 1 {
			t.Errorf("Expected 1 entry, got %d", list.Len())
		}
	})

	t.Run("ScaleOverride", func(t *testing.T) {
		list, err := gen.FromRecipeIDs(ctx, []int64{idA}, map[int64]int{idA: 4})
		if err != nil {
			t.Fatalf("Failed to generate shopping list: %v", err)
		}
		items := list.ItemsIn("pantry")
		if len(items) != 1 || items[0].Quantity != "4" {
			t.Errorf("Expected quantity scaled to '4', got %+v", items)
		}
	})
}

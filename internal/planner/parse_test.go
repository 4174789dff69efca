package planner

import (
	"testing"

	"cookplanner/internal/recipe"
)

func catalog() []recipe.Recipe {
	mk := func(id int64, title string) recipe.Recipe {
		r := recipe.Recipe{ID: id}
		r.TitleEN = title
		return r
	}
	return []recipe.Recipe{
		mk(1, "Teriyaki Chicken"),
		mk(2, "Miso Soup"),
		mk(5, "Gyoza"),
	}
}

func TestParsePlanResponse(t *testing.T) {
	t.Run("FullResponse", func(t *testing.T) {
		text := `Day 1: Recipe ID 1 - Teriyaki Chicken
Day 2: Recipe ID 5 - Gyoza

REASONING:
Protein variety across the week.
Light soup to balance.`

		plan := parsePlanResponse(text, catalog())
		if len(plan.Dinners) != 2 {
			t.Fatalf("Expected 2 dinners, got %d", len(plan.Dinners))
		}
		if plan.Dinners[0].Day != "Day 1" || plan.Dinners[0].RecipeID != 1 {
			t.Errorf("Unexpected first dinner: %+v", plan.Dinners[0])
		}
		if plan.Dinners[1].RecipeTitle != "Gyoza" {
			t.Errorf("Expected title from the catalog, got %q", plan.Dinners[1].RecipeTitle)
		}
		want := "Protein variety across the week.\nLight soup to balance."
		if plan.Reasoning != want {
			t.Errorf("Unexpected reasoning: %q", plan.Reasoning)
		}
	})

	t.Run("UnknownIDsDropped", func(t *testing.T) {
		text := "Day 1: Recipe ID 99 - Made Up\nDay 2: Recipe ID 2 - Miso Soup"
		plan := parsePlanResponse(text, catalog())
		if len(plan.Dinners) != 1 || plan.Dinners[0].RecipeID != 2 {
			t.Errorf("Expected only the known recipe, got %+v", plan.Dinners)
		}
	})

	t.Run("NonDayLinesIgnored", func(t *testing.T) {
		text := "Here is your plan:\n\nDay 1: Recipe ID 1 - Teriyaki Chicken\nEnjoy!"
		plan := parsePlanResponse(text, catalog())
		if len(plan.Dinners) != 1 {
			t.Errorf("Expected 1 dinner, got %+v", plan.Dinners)
		}
	})
}

func TestExtractRecipeID(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int64
		wantOK bool
	}{
		{"RecipeIDForm", "Recipe ID 5 - Gyoza", 5, true},
		{"IDForm", "ID 12: Something", 12, true},
		{"BareNumber", "7 - Miso Soup", 7, true},
		{"BareNumberColon", "3: Salad", 3, true},
		{"LowercaseForm", "recipe id 9 - Curry", 9, true},
		{"NoID", "Teriyaki Chicken", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractRecipeID(tt.text)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("extractRecipeID(%q) = (%d, %v), want (%d, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

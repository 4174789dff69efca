package telegram

import (
	"strings"
	"testing"

	"cookplanner/internal/planner"
	"cookplanner/internal/recipe"
)

func TestFormatPlanOptions(t *testing.T) {
	plans := []planner.DinnerPlan{
		{
			Dinners: []planner.Dinner{
				{Day: "Day 1", RecipeID: 1, RecipeTitle: "Teriyaki Chicken"},
				{Day: "Day 2", RecipeID: 2, RecipeTitle: "Miso Soup"},
			},
			Reasoning: "Protein then something light.",
		},
		{
			Dinners: []planner.Dinner{
				{Day: "Day 1", RecipeID: 3, RecipeTitle: "Gyoza"},
			},
		},
	}

	output := formatPlanOptions(plans)

	if !strings.Contains(output, "📅 *Dinner Plan Options*") {
		t.Error("Missing header")
	}
	if !strings.Contains(output, "*Option 1*") || !strings.Contains(output, "*Option 2*") {
		t.Error("Missing option headers")
	}
	if !strings.Contains(output, "Day 1: Teriyaki Chicken") {
		t.Error("Missing dinner line")
	}
	if !strings.Contains(output, "_Protein then something light._") {
		t.Error("Missing reasoning")
	}
}

func TestFormatRecipeList(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		if got := formatRecipeList(nil, ""); !strings.Contains(got, "No recipes yet") {
			t.Errorf("Unexpected empty message: %q", got)
		}
		if got := formatRecipeList(nil, "fish"); !strings.Contains(got, "tagged 'fish'") {
			t.Errorf("Unexpected empty tag message: %q", got)
		}
	})

	t.Run("WithRecipes", func(t *testing.T) {
		r := recipe.Recipe{ID: 7}
		r.TitleEN = "Teriyaki Chicken"
		r.Tags = []string{"chicken", "easy"}

		output := formatRecipeList([]recipe.Recipe{r}, "")
		if !strings.Contains(output, "• *7*: Teriyaki Chicken") {
			t.Error("Missing recipe line")
		}
		if !strings.Contains(output, "_(chicken, easy)_") {
			t.Error("Missing tags")
		}
	})
}

func TestParsePlanArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      string
		wantDays  int
		wantPrefs string
	}{
		{"Empty", "", 7, ""},
		{"DaysOnly", " 5", 5, ""},
		{"DaysAndPrefs", " 5 vegetarian, light meals", 5, "vegetarian, light meals"},
		{"PrefsOnly", " lots of fish", 7, "lots of fish"},
		{"DaysOutOfRange", " 99 fish", 7, "99 fish"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, prefs := parsePlanArgs(tt.args)
			if days != tt.wantDays || prefs != tt.wantPrefs {
				t.Errorf("parsePlanArgs(%q) = (%d, %q), want (%d, %q)", tt.args, days, prefs, tt.wantDays, tt.wantPrefs)
			}
		})
	}
}

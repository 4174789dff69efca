package shopping

import (
	"testing"

	"cookplanner/internal/recipe"
)

// Format is an external contract: the rendered text is embedded verbatim in
// the consolidation prompt, so the exact shape is pinned here.
func TestShoppingListFormat(t *testing.T) {
	recipes := []recipe.Recipe{
		makeRecipe(1, "Teriyaki Chicken", 2,
			recipe.Ingredient{NameEN: "chicken thigh", NameJP: "鶏もも肉", Quantity: "400", Unit: "g", Category: "protein"},
			recipe.Ingredient{NameEN: "soy sauce", Quantity: "2", Unit: "tbsp", Category: "pantry"},
		),
		makeRecipe(2, "Fried Rice", 2,
			recipe.Ingredient{NameEN: "soy sauce", Quantity: "1", Unit: "tbsp", Category: "pantry"},
			recipe.Ingredient{NameEN: "salt", Quantity: "to taste", Category: "pantry"},
		),
	}
	list := Aggregate(recipes, nil)

	want := "pantry:\n" +
		"• to taste salt\n" +
		"• 3 tbsp soy sauce (used in 2 recipes)\n" +
		"\n" +
		"protein:\n" +
		"• 400 g chicken thigh\n"

	if got := list.Format(); got != want {
		t.Errorf("Format() mismatch.\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestShoppingListFormatEmpty(t *testing.T) {
	if got := Aggregate(nil, nil).Format(); got != "" {
		t.Errorf("Expected empty rendering for empty list, got %q", got)
	}
}

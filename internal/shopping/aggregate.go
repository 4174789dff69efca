package shopping

import (
	"sort"
	"strings"

	"cookplanner/internal/recipe"
)

// DefaultCategory is where ingredients without a category land.
const DefaultCategory = "Other"

// IngredientLine is one ingredient occurrence from a source recipe, tagged
// with the scale factor to apply and the recipe it came from.
type IngredientLine struct {
	NameEN      string
	NameJP      string
	Quantity    string
	Unit        string
	Category    string
	RecipeTitle string
	ScaleFactor float64
}

// ConsolidatedEntry is one shopping-list line merged from every ingredient
// line that shared its name and unit. Recipes lists the contributing recipe
// titles in encounter order.
type ConsolidatedEntry struct {
	NameEN   string
	NameJP   string
	Quantity string
	Unit     string
	Recipes  []string
}

// Lines with the same lowercased name and unit are merged; anything else stays
// separate, so "egg" and "eggs" remain two entries.
type groupKey struct {
	name string
	unit string
}

// Aggregate consolidates the ingredients of the given recipes into a shopping
// list. scaleServings maps recipe ID to a desired serving count; recipes not
// in the map keep their native yield. An empty recipe list produces an empty
// list, not an error.
func Aggregate(recipes []recipe.Recipe, scaleServings map[int64]int) *ShoppingList {
	byCategory := make(map[string][]IngredientLine)

	for _, rec := range recipes {
		// Stored recipes always have servings >= 1, the repository
		// rejects anything else on insert.
		factor := 1.0
		if target, ok := scaleServings[rec.ID]; ok {
			factor = float64(target) / float64(rec.Servings)
		}

		for _, ing := range rec.Ingredients {
			category := ing.Category
			if category == "" {
				category = DefaultCategory
			}
			byCategory[category] = append(byCategory[category], IngredientLine{
				NameEN:      ing.NameEN,
				NameJP:      ing.NameJP,
				Quantity:    ing.Quantity,
				Unit:        ing.Unit,
				Category:    category,
				RecipeTitle: rec.TitleEN,
				ScaleFactor: factor,
			})
		}
	}

	items := make(map[string][]ConsolidatedEntry, len(byCategory))
	for category, lines := range byCategory {
		items[category] = consolidate(lines)
	}

	return &ShoppingList{items: items}
}

func consolidate(lines []IngredientLine) []ConsolidatedEntry {
	var order []groupKey
	groups := make(map[groupKey][]IngredientLine)

	for _, line := range lines {
		key := groupKey{name: strings.ToLower(line.NameEN), unit: strings.ToLower(line.Unit)}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], line)
	}

	entries := make([]ConsolidatedEntry, 0, len(order))
	for _, key := range order {
		group := groups[key]
		first := group[0]
		entry := ConsolidatedEntry{
			NameEN: first.NameEN,
			NameJP: first.NameJP,
			Unit:   first.Unit,
		}

		if len(group) == 1 {
			entry.Quantity = ScaleQuantity(first.Quantity, first.ScaleFactor)
			entry.Recipes = []string{first.RecipeTitle}
		} else {
			entry.Quantity = sumQuantities(group)
			for _, line := range group {
				entry.Recipes = append(entry.Recipes, line.RecipeTitle)
			}
		}

		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].NameEN < entries[j].NameEN
	})
	return entries
}

// sumQuantities adds up the scaled quantities of a group. The unit suffix is
// taken from the first line that had one. If any line in the group is not
// numeric the whole sum is abandoned: the first line's scaled quantity is kept
// and flagged, so an unresolved merge stays visible instead of silently wrong.
func sumQuantities(group []IngredientLine) string {
	var total float64
	var suffix string

	for _, line := range group {
		scaled := ScaleQuantity(line.Quantity, line.ScaleFactor)
		v, rest, ok := parseLeadingNumber(scaled)
		if !ok {
			firstScaled := ScaleQuantity(group[0].Quantity, group[0].ScaleFactor)
			return firstScaled + " (multiple recipes)"
		}
		if suffix == "" && rest != "" {
			suffix = rest
		}
		total += v
	}

	result := formatAmount(total)
	if suffix != "" {
		result += " " + suffix
	}
	return result
}

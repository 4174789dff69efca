package shopping

import (
	"fmt"
	"sort"
	"strings"
)

// ShoppingList is the read-only result of an aggregation: consolidated entries
// grouped by category. It is built once and never mutated.
type ShoppingList struct {
	items map[string][]ConsolidatedEntry
}

// Categories returns all category names in ascending order.
func (l *ShoppingList) Categories() []string {
	cats := make([]string, 0, len(l.items))
	for c := range l.items {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// ItemsIn returns the consolidated entries of a category, sorted by English
// name. Unknown categories yield an empty slice.
func (l *ShoppingList) ItemsIn(category string) []ConsolidatedEntry {
	return l.items[category]
}

// Len returns the total number of consolidated entries.
func (l *ShoppingList) Len() int {
	n := 0
	for _, entries := range l.items {
		n += len(entries)
	}
	return n
}

// Format renders the list as plain text: a header per category, then one
// bulleted line per entry, annotated with the recipe count when an entry came
// from more than one recipe. This exact shape is embedded verbatim in the
// consolidation prompt, so changing it changes the external contract.
func (l *ShoppingList) Format() string {
	var sb strings.Builder

	for i, category := range l.Categories() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(category)
		sb.WriteString(":\n")

		for _, item := range l.ItemsIn(category) {
			qtyUnit := strings.TrimSpace(item.Quantity + " " + item.Unit)
			sb.WriteString("• ")
			sb.WriteString(strings.TrimSpace(qtyUnit + " " + item.NameEN))
			if len(item.Recipes) > 1 {
				fmt.Fprintf(&sb, " (used in %d recipes)", len(item.Recipes))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

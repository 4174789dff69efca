package planner

// Dinner is one planned evening meal.
type Dinner struct {
	Day         string `json:"day"`
	RecipeID    int64  `json:"recipe_id"`
	RecipeTitle string `json:"recipe_title"`
}

// DinnerPlan is one generated plan option: a sequence of dinners plus the
// model's reasoning for the selection.
type DinnerPlan struct {
	Dinners   []Dinner `json:"dinners"`
	Reasoning string   `json:"reasoning"`
}

// RecipeIDs returns the recipe IDs used by the plan, in day order.
func (p *DinnerPlan) RecipeIDs() []int64 {
	ids := make([]int64, 0, len(p.Dinners))
	for _, d := range p.Dinners {
		ids = append(ids, d.RecipeID)
	}
	return ids
}

// Request captures what the user asked for when plans were generated.
type Request struct {
	UserID              string
	NumDays             int
	Servings            int
	Preferences         string
	ExcludedIngredients []string
}

package planner

import (
	"regexp"
	"strconv"
	"strings"

	"cookplanner/internal/recipe"
)

var recipeIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Recipe ID (\d+)`),
	regexp.MustCompile(`(?i)ID (\d+)`),
	regexp.MustCompile(`^(\d+)\s*[-:]`),
}

// parsePlanResponse reads "Day N: Recipe ID X - Title" lines and the
// trailing REASONING block out of a model response. Lines naming unknown
// recipe IDs are dropped rather than failing the whole plan.
func parsePlanResponse(text string, recipes []recipe.Recipe) DinnerPlan {
	lookup := make(map[int64]recipe.Recipe, len(recipes))
	for _, r := range recipes {
		lookup[r.ID] = r
	}

	var plan DinnerPlan
	var reasoning strings.Builder
	inReasoning := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "REASONING:") {
			inReasoning = true
			continue
		}
		if inReasoning {
			reasoning.WriteString(line)
			reasoning.WriteString("\n")
			continue
		}

		if !strings.HasPrefix(strings.ToLower(line), "day ") || !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		day := strings.TrimSpace(parts[0])
		rest := strings.TrimSpace(parts[1])

		id, ok := extractRecipeID(rest)
		if !ok {
			continue
		}
		r, known := lookup[id]
		if !known {
			continue
		}
		plan.Dinners = append(plan.Dinners, Dinner{
			Day:         day,
			RecipeID:    id,
			RecipeTitle: r.TitleEN,
		})
	}

	plan.Reasoning = strings.TrimSpace(reasoning.String())
	return plan
}

// extractRecipeID finds a recipe ID in text like "Recipe ID 5 - Title",
// "ID 5: Title" or "5 - Title".
func extractRecipeID(text string) (int64, bool) {
	for _, pattern := range recipeIDPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		return id, true
	}
	return 0, false
}

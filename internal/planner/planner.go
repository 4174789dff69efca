package planner

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"cookplanner/internal/llm"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shared"
)

//go:embed planner_prompt.md
var plannerPrompt string

// Planner generates dinner plan options from the recipe catalog.
type Planner struct {
	recipeRepo *recipe.Repository
	planRepo   *Repository
	textGen    llm.TextGenerator
}

// NewPlanner creates a new Planner.
func NewPlanner(recipeRepo *recipe.Repository, planRepo *Repository, textGen llm.TextGenerator) *Planner {
	return &Planner{
		recipeRepo: recipeRepo,
		planRepo:   planRepo,
		textGen:    textGen,
	}
}

// PlanResult bundles the generated options with the stored request ID and
// call metadata.
type PlanResult struct {
	RequestID int64
	Plans     []DinnerPlan
	Meta      []shared.CallMeta
}

// CreatePlanOptions generates numOptions distinct dinner plans. Earlier
// options are fed back into later prompts so the model avoids repeating
// itself, and the user's plan history steers the choices. The request and
// every option are persisted so the user's eventual pick can be recorded.
func (p *Planner) CreatePlanOptions(ctx context.Context, req Request, numOptions int) (*PlanResult, error) {
	if numOptions < 1 {
		numOptions = 1
	}

	recipes, err := p.recipeRepo.List(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	if len(recipes) == 0 {
		return nil, fmt.Errorf("no recipes available, import recipes first")
	}

	history, err := p.planRepo.History(ctx, req.UserID, 10)
	if err != nil {
		return nil, err
	}

	recipeContext := buildRecipeContext(recipes)
	historyContext := FormatHistory(history)

	requestID, err := p.planRepo.SaveRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &PlanResult{RequestID: requestID}
	for i := 0; i < numOptions; i++ {
		prompt, err := buildPlannerPrompt(promptData{
			NumDays:         req.NumDays,
			Servings:        req.Servings,
			Preferences:     req.Preferences,
			Excluded:        strings.Join(req.ExcludedIngredients, ", "),
			RecipeContext:   recipeContext,
			HistoryContext:  historyContext,
			OptionNumber:    i + 1,
			TotalOptions:    numOptions,
			PreviousOptions: describePrevious(result.Plans),
		})
		if err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := p.textGen.GenerateContent(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("failed to generate plan option %d: %w", i+1, err)
		}
		result.Meta = append(result.Meta, shared.CallMeta{
			Operation: "Planner",
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		})

		plan := parsePlanResponse(resp.Content, recipes)
		if err := p.planRepo.SaveOption(ctx, requestID, i, plan); err != nil {
			return nil, err
		}
		result.Plans = append(result.Plans, plan)
	}

	return result, nil
}

type promptData struct {
	NumDays         int
	Servings        int
	Preferences     string
	Excluded        string
	RecipeContext   string
	HistoryContext  string
	OptionNumber    int
	TotalOptions    int
	PreviousOptions []string
}

func buildPlannerPrompt(data promptData) (string, error) {
	tmpl, err := template.New("planner").Parse(plannerPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildRecipeContext renders the catalog compactly: enough for the model to
// choose by, small enough to keep hundreds of recipes in one prompt.
func buildRecipeContext(recipes []recipe.Recipe) string {
	var sb strings.Builder
	sb.WriteString("Available Recipes:\n")

	for _, r := range recipes {
		tags := "no tags"
		if len(r.Tags) > 0 {
			tags = strings.Join(r.Tags, ", ")
		}

		names := make([]string, 0, 5)
		for _, ing := range r.Ingredients {
			if len(names) == 5 {
				break
			}
			names = append(names, ing.NameEN)
		}
		ingredients := strings.Join(names, ", ")
		if len(r.Ingredients) > 5 {
			ingredients += "..."
		}

		summary := r.SummaryEN
		if len(summary) > 100 {
			summary = summary[:100] + "..."
		}

		fmt.Fprintf(&sb, "\n- ID %d: %s (%s)\n  Tags: %s\n  Servings: %d\n  Key ingredients: %s\n  Summary: %s\n",
			r.ID, r.TitleEN, r.TitleJP, tags, r.Servings, ingredients, summary)
	}
	return sb.String()
}

func describePrevious(plans []DinnerPlan) []string {
	var lines []string
	for i, plan := range plans {
		ids := make([]string, 0, len(plan.Dinners))
		for _, d := range plan.Dinners {
			ids = append(ids, fmt.Sprintf("%d", d.RecipeID))
		}
		lines = append(lines, fmt.Sprintf("Option %d: Uses recipe IDs: %s", i+1, strings.Join(ids, ", ")))
	}
	return lines
}

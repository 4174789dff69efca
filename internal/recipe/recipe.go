package recipe

import "fmt"

// Ingredient is a single ingredient line as extracted from a cookbook page.
type Ingredient struct {
	NameJP         string `json:"name_jp"`
	NameEN         string `json:"name_en"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	Category       string `json:"category,omitempty"`
	SauceReference string `json:"sauce_reference,omitempty"`
}

// Instruction is a single numbered step in a recipe.
type Instruction struct {
	StepNumber int    `json:"step_number"`
	TextJP     string `json:"text_jp"`
	TextEN     string `json:"text_en"`
}

// RecipeExtract is a complete recipe extracted from a cookbook page. It is the
// declared output shape of the vision extraction call.
type RecipeExtract struct {
	TitleJP      string        `json:"title_jp"`
	TitleEN      string        `json:"title_en"`
	SummaryEN    string        `json:"summary_en"`
	Servings     int           `json:"servings"`
	Tags         []string      `json:"tags"`
	Ingredients  []Ingredient  `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
}

// MultiRecipeExtract wraps extraction results for pages that may carry more
// than one recipe.
type MultiRecipeExtract struct {
	Recipes []RecipeExtract `json:"recipes"`
}

// Validate checks the fields every stored recipe must have. Servings of zero
// (model omitted the field) is normalized to the cookbook default of 2.
func (e *RecipeExtract) Validate() error {
	if e.TitleEN == "" {
		return fmt.Errorf("recipe has no English title")
	}
	if e.Servings == 0 {
		e.Servings = 2
	}
	if e.Servings < 0 {
		return fmt.Errorf("recipe %q has invalid servings %d", e.TitleEN, e.Servings)
	}
	return nil
}

// Recipe is a stored recipe: the extracted data plus database metadata.
type Recipe struct {
	ID int64 `json:"id"`
	RecipeExtract
	SourceFile  string `json:"source_file,omitempty"`
	DriveFileID string `json:"drive_file_id,omitempty"`
	PageNumber  int    `json:"page_number,omitempty"` // 0 when the source was not a PDF page
	RecipeIndex int    `json:"recipe_index"`
	CreatedAt   string `json:"created_at,omitempty"`
}

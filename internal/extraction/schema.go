package extraction

import "github.com/google/generative-ai-go/genai"

// ingredientSchema mirrors recipe.Ingredient. Quantity stays a string so the
// model can return values like "1/2" or "to taste" unchanged.
var ingredientSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name_jp":         {Type: genai.TypeString, Description: "Japanese ingredient name"},
		"name_en":         {Type: genai.TypeString, Description: "English ingredient name"},
		"quantity":        {Type: genai.TypeString, Description: "Amount as written, e.g. \"200\", \"1/2\", \"to taste\""},
		"unit":            {Type: genai.TypeString, Description: "Unit such as g, ml, tbsp, tsp, cup, piece"},
		"category":        {Type: genai.TypeString, Description: "One of: produce, protein, pantry, dairy, seasoning"},
		"sauce_reference": {Type: genai.TypeString, Description: "Group letter (A, B, ...) when the ingredient belongs to a labelled sauce group"},
	},
	Required: []string{"name_jp", "name_en", "quantity", "unit", "category"},
}

var instructionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"step_number": {Type: genai.TypeInteger},
		"text_jp":     {Type: genai.TypeString},
		"text_en":     {Type: genai.TypeString},
	},
	Required: []string{"step_number", "text_jp", "text_en"},
}

var recipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title_jp":     {Type: genai.TypeString},
		"title_en":     {Type: genai.TypeString},
		"summary_en":   {Type: genai.TypeString, Description: "1-2 sentence description of the dish"},
		"servings":     {Type: genai.TypeInteger},
		"tags":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"ingredients":  {Type: genai.TypeArray, Items: ingredientSchema},
		"instructions": {Type: genai.TypeArray, Items: instructionSchema},
	},
	Required: []string{"title_jp", "title_en", "ingredients", "instructions"},
}

// multiRecipeSchema wraps recipeSchema for pages carrying several recipes.
var multiRecipeSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recipes": {Type: genai.TypeArray, Items: recipeSchema},
	},
	Required: []string{"recipes"},
}

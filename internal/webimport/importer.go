package webimport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cookplanner/internal/llm"
	"cookplanner/internal/recipe"
)

// Importer fetches a recipe web page, extracts a structured recipe with the
// LLM and stores it alongside the cookbook recipes.
type Importer struct {
	textGen    llm.TextGenerator
	repo       *recipe.Repository
	httpClient *http.Client
}

// NewImporter creates a new Importer.
func NewImporter(textGen llm.TextGenerator, repo *recipe.Repository) *Importer {
	return &Importer{
		textGen:    textGen,
		repo:       repo,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// ImportURL fetches the URL, extracts the recipe and saves it. The source
// URL is recorded as the recipe's source file.
func (i *Importer) ImportURL(ctx context.Context, url string) (int64, *recipe.RecipeExtract, error) {
	content, err := i.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	prompt := fmt.Sprintf(`You are a recipe extraction expert. Extract the recipe from the following web page text.
Return the result strictly as a JSON object with this structure:
{
  "title_jp": "Japanese title if present, otherwise empty",
  "title_en": "Recipe title in English",
  "summary_en": "1-2 sentence description",
  "servings": 2,
  "tags": ["tag1", "tag2"],
  "ingredients": [
    {"name_jp": "", "name_en": "soy sauce", "quantity": "2", "unit": "tbsp", "category": "pantry", "sauce_reference": ""}
  ],
  "instructions": [
    {"step_number": 1, "text_jp": "", "text_en": "Step description"}
  ]
}

category is one of: produce, protein, pantry, dairy, seasoning.
Do not wrap the JSON in markdown formatting.

Page content:
%s`, content)

	resp, err := i.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to extract recipe: %w", err)
	}

	var extract recipe.RecipeExtract
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &extract); err != nil {
		return 0, nil, fmt.Errorf("failed to parse extraction response: %w: %s", err, resp.Content)
	}

	id, err := i.repo.Insert(ctx, extract, recipe.SourceInfo{SourceFile: url})
	if err != nil {
		return 0, nil, err
	}
	return id, &extract, nil
}

// fetchAndCleanHTML downloads the page and strips markup that only wastes
// prompt tokens.
func (i *Importer) fetchAndCleanHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	return doc.Find("body").Text(), nil
}

// stripFences removes a markdown code fence around a JSON payload when the
// model adds one despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

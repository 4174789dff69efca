package extraction

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cookplanner/internal/config"
	"cookplanner/internal/llm"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// VisionExtractor turns a cookbook page image into structured recipe records.
type VisionExtractor interface {
	ExtractRecipes(ctx context.Context, imagePath string) ([]recipe.RecipeExtract, shared.CallMeta, error)
}

// GeminiVision is a Gemini client configured for schema-constrained vision
// extraction: responses come back as JSON matching multiRecipeSchema.
type GeminiVision struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGeminiVision creates a vision extraction client.
func NewGeminiVision(ctx context.Context, cfg *config.Config) (*GeminiVision, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = multiRecipeSchema

	return &GeminiVision{
		client:    client,
		model:     model,
		modelName: cfg.GeminiModelName,
	}, nil
}

// ExtractRecipes sends a page image through the model and decodes the
// structured response. A page can carry zero, one or several recipes.
func (v *GeminiVision) ExtractRecipes(ctx context.Context, imagePath string) ([]recipe.RecipeExtract, shared.CallMeta, error) {
	start := time.Now()
	meta := shared.CallMeta{Operation: "VisionExtractor"}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to read image %s: %w", imagePath, err)
	}

	resp, err := v.model.GenerateContent(ctx,
		genai.ImageData(imageFormat(imagePath), data),
		genai.Text(extractorPrompt),
	)
	if err != nil {
		return nil, meta, fmt.Errorf("failed to extract recipes from %s: %w", filepath.Base(imagePath), err)
	}

	meta.Usage.Model = v.modelName
	if resp.UsageMetadata != nil {
		meta.Usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		meta.Usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		meta.Usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	meta.Latency = time.Since(start)

	text, err := llm.ResponseText(resp)
	if err != nil {
		return nil, meta, err
	}

	var multi recipe.MultiRecipeExtract
	if err := json.Unmarshal([]byte(text), &multi); err != nil {
		return nil, meta, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	return multi.Recipes, meta, nil
}

// Close closes the underlying Gemini client.
func (v *GeminiVision) Close() error {
	return v.client.Close()
}

func imageFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	default:
		return "jpeg"
	}
}

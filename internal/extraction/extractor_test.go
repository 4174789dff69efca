package extraction

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cookplanner/internal/database"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shared"
)

type mockVision struct {
	extracts    []recipe.RecipeExtract
	calls       int
	shouldError bool
}

func (m *mockVision) ExtractRecipes(ctx context.Context, imagePath string) ([]recipe.RecipeExtract, shared.CallMeta, error) {
	m.calls++
	if m.shouldError {
		return nil, shared.CallMeta{}, errors.New("vision error")
	}
	return m.extracts, shared.CallMeta{Operation: "VisionExtractor"}, nil
}

func newTestExtractor(t *testing.T, vision VisionExtractor) (*Extractor, *recipe.Repository) {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := recipe.NewRepository(db.SQL)
	return NewExtractor(vision, repo), repo
}

func TestExtractFromImage(t *testing.T) {
	ctx := context.Background()

	t.Run("SavesAllRecipesOnPage", func(t *testing.T) {
		vision := &mockVision{extracts: []recipe.RecipeExtract{
			{TitleEN: "Miso Soup", Servings: 2},
			{TitleEN: "Rice Bowl", Servings: 2},
		}}
		extractor, repo := newTestExtractor(t, vision)

		ids, err := extractor.ExtractFromImage(ctx, "/images/book_page_003.jpg", "drive-1")
		if err != nil {
			t.Fatalf("Failed to extract: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("Expected 2 saved recipes, got %d", len(ids))
		}

		saved, err := repo.Get(ctx, ids[0])
		if err != nil {
			t.Fatalf("Failed to load saved recipe: %v", err)
		}
		if saved.SourceFile != "book_page_003.jpg" {
			t.Errorf("Expected source file 'book_page_003.jpg', got '%s'", saved.SourceFile)
		}
		if saved.PageNumber != 3 {
			t.Errorf("Expected page number 3, got %d", saved.PageNumber)
		}
		if saved.DriveFileID != "drive-1" {
			t.Errorf("Expected drive file ID 'drive-1', got '%s'", saved.DriveFileID)
		}
	})

	t.Run("RerunSkipsExistingRecipes", func(t *testing.T) {
		vision := &mockVision{extracts: []recipe.RecipeExtract{{TitleEN: "Miso Soup", Servings: 2}}}
		extractor, repo := newTestExtractor(t, vision)

		if _, err := extractor.ExtractFromImage(ctx, "book_page_001.jpg", ""); err != nil {
			t.Fatalf("Failed on first extraction: %v", err)
		}
		ids, err := extractor.ExtractFromImage(ctx, "book_page_001.jpg", "")
		if err != nil {
			t.Fatalf("Failed on second extraction: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("Expected rerun to save nothing, got %d IDs", len(ids))
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count recipes: %v", err)
		}
		if count != 1 {
			t.Errorf("Expected 1 stored recipe, got %d", count)
		}
	})

	t.Run("VisionError", func(t *testing.T) {
		extractor, _ := newTestExtractor(t, &mockVision{shouldError: true})
		if _, err := extractor.ExtractFromImage(ctx, "book_page_001.jpg", ""); err == nil {
			t.Fatal("Expected an error from the vision client, got nil")
		}
	})
}

func TestExtractBatch(t *testing.T) {
	ctx := context.Background()
	vision := &mockVision{extracts: []recipe.RecipeExtract{{TitleEN: "Miso Soup", Servings: 2}}}
	extractor, _ := newTestExtractor(t, vision)

	// Second entry is the same page, so the rerun is a skip.
	stats, err := extractor.ExtractBatch(ctx, []string{"book_page_001.jpg", "book_page_001.jpg"})
	if err != nil {
		t.Fatalf("Failed to run batch: %v", err)
	}
	if stats.Total != 2 || stats.Extracted != 1 || stats.Skipped != 1 || stats.RecipeCount != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if vision.calls != 2 {
		t.Errorf("Expected 2 vision calls, got %d", vision.calls)
	}
}

func TestPageNumberFromName(t *testing.T) {
	tests := []struct {
		name string
		file string
		want int
	}{
		{"PDFPage", "cookbook_page_012.jpg", 12},
		{"LeadingZeros", "book_page_003.png", 3},
		{"NoMarker", "photo.jpg", 0},
		{"PageWithoutNumber", "my_page_notes.jpg", 0},
		{"UnderscoresElsewhere", "weeknight_meals_page_7.jpg", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageNumberFromName(tt.file); got != tt.want {
				t.Errorf("pageNumberFromName(%q) = %d, want %d", tt.file, got, tt.want)
			}
		})
	}
}

package extraction

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"cookplanner/internal/recipe"
)

// Extractor coordinates vision extraction and storage. Pages already present
// in the database are skipped, keyed by (source file, page number, position
// of the recipe on the page).
type Extractor struct {
	vision VisionExtractor
	repo   *recipe.Repository
}

// NewExtractor creates an extractor backed by the given vision client and
// recipe repository.
func NewExtractor(vision VisionExtractor, repo *recipe.Repository) *Extractor {
	return &Extractor{vision: vision, repo: repo}
}

// BatchStats summarizes an ExtractBatch run.
type BatchStats struct {
	Total       int
	Extracted   int
	Skipped     int
	Errors      int
	RecipeCount int
}

// ExtractFromImage extracts every recipe on a page image and stores the new
// ones. It returns the inserted recipe IDs; recipes stored by an earlier run
// are skipped silently.
func (e *Extractor) ExtractFromImage(ctx context.Context, imagePath, driveFileID string) ([]int64, error) {
	sourceFile := filepath.Base(imagePath)
	pageNumber := pageNumberFromName(sourceFile)

	extracts, meta, err := e.vision.ExtractRecipes(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	log.Printf("Extracted %d recipe(s) from %s (%d tokens, %v)",
		len(extracts), sourceFile, meta.Usage.TotalTokens, meta.Latency.Round(1e6))

	var ids []int64
	for i, extract := range extracts {
		exists, err := e.repo.AlreadyExtracted(ctx, sourceFile, pageNumber, i)
		if err != nil {
			return ids, err
		}
		if exists {
			log.Printf("Recipe %d of %s already extracted, skipping", i, sourceFile)
			continue
		}

		id, err := e.repo.Insert(ctx, extract, recipe.SourceInfo{
			SourceFile:  sourceFile,
			DriveFileID: driveFileID,
			PageNumber:  pageNumber,
			RecipeIndex: i,
		})
		if err != nil {
			return ids, fmt.Errorf("failed to save recipe from %s: %w", sourceFile, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ExtractBatch runs ExtractFromImage over a list of images, continuing past
// individual failures.
func (e *Extractor) ExtractBatch(ctx context.Context, imagePaths []string) (BatchStats, error) {
	stats := BatchStats{Total: len(imagePaths)}

	for _, path := range imagePaths {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		ids, err := e.ExtractFromImage(ctx, path, "")
		if err != nil {
			log.Printf("Error extracting from %s: %v", filepath.Base(path), err)
			stats.Errors++
			continue
		}
		if len(ids) == 0 {
			stats.Skipped++
			continue
		}
		stats.Extracted++
		stats.RecipeCount += len(ids)
	}
	return stats, nil
}

// pageNumberFromName pulls the page number out of names like
// "cookbook_page_012.jpg". It returns 0 when the name carries no page marker.
func pageNumberFromName(name string) int {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(stem, "_")
	for i, part := range parts {
		if part != "page" || i+1 >= len(parts) {
			continue
		}
		if n, err := strconv.Atoi(parts[i+1]); err == nil {
			return n
		}
	}
	return 0
}

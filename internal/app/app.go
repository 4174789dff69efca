package app

import (
	"context"
	"fmt"
	"log"

	"cookplanner/internal/config"
	"cookplanner/internal/database"
	"cookplanner/internal/extraction"
	"cookplanner/internal/llm"
	"cookplanner/internal/metrics"
	"cookplanner/internal/planner"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shared"
	"cookplanner/internal/shopping"
	syncpkg "cookplanner/internal/sync"
	"cookplanner/internal/webimport"
)

// App wires the database, repositories and services behind the CLI
// commands. LLM and Drive clients are only built by the commands that
// need them, so offline commands work without credentials.
type App struct {
	cfg *config.Config
	db  *database.DB

	RecipeRepo   *recipe.Repository
	PlanRepo     *planner.Repository
	SyncRepo     *syncpkg.Repository
	MetricsStore *metrics.Store

	gemini *llm.GeminiClient
	vision *extraction.GeminiVision
}

// New opens the database and builds the repositories.
func New(cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &App{
		cfg:          cfg,
		db:           db,
		RecipeRepo:   recipe.NewRepository(db.SQL),
		PlanRepo:     planner.NewRepository(db.SQL),
		SyncRepo:     syncpkg.NewRepository(db.SQL),
		MetricsStore: metrics.NewStore(db.SQL),
	}, nil
}

// Close releases the database and any LLM clients.
func (a *App) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if a.vision != nil {
		a.vision.Close()
	}
	a.db.Close()
}

func (a *App) textGen(ctx context.Context) (llm.TextGenerator, error) {
	if a.gemini == nil {
		client, err := llm.NewGeminiClient(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.gemini = client
	}
	return a.gemini, nil
}

func (a *App) visionClient(ctx context.Context) (extraction.VisionExtractor, error) {
	if a.vision == nil {
		client, err := extraction.NewGeminiVision(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.vision = client
	}
	return a.vision, nil
}

// Sync mirrors the Drive folder into the local images directory.
func (a *App) Sync(ctx context.Context) (syncpkg.Stats, error) {
	if err := a.cfg.ValidateSync(); err != nil {
		return syncpkg.Stats{}, err
	}

	drive, err := syncpkg.NewDriveClient(ctx, a.cfg)
	if err != nil {
		return syncpkg.Stats{}, err
	}
	syncer := syncpkg.NewSyncer(drive, syncpkg.NewPDFProcessor(), a.SyncRepo, a.cfg.ImagesDir())
	return syncer.SyncAll(ctx)
}

// Extract runs vision extraction over a single page image.
func (a *App) Extract(ctx context.Context, imagePath string) ([]int64, error) {
	vision, err := a.visionClient(ctx)
	if err != nil {
		return nil, err
	}
	return extraction.NewExtractor(vision, a.RecipeRepo).ExtractFromImage(ctx, imagePath, "")
}

// ExtractBatch extracts every page image in the images directory.
func (a *App) ExtractBatch(ctx context.Context) (extraction.BatchStats, error) {
	vision, err := a.visionClient(ctx)
	if err != nil {
		return extraction.BatchStats{}, err
	}

	syncer := syncpkg.NewSyncer(nil, nil, a.SyncRepo, a.cfg.ImagesDir())
	images, err := syncer.UnprocessedImages()
	if err != nil {
		return extraction.BatchStats{}, err
	}
	if len(images) == 0 {
		log.Printf("No images found in %s, run sync first", a.cfg.ImagesDir())
	}
	return extraction.NewExtractor(vision, a.RecipeRepo).ExtractBatch(ctx, images)
}

// Plan generates dinner plan options for the CLI user.
func (a *App) Plan(ctx context.Context, req planner.Request, numOptions int) (*planner.PlanResult, error) {
	textGen, err := a.textGen(ctx)
	if err != nil {
		return nil, err
	}

	p := planner.NewPlanner(a.RecipeRepo, a.PlanRepo, textGen)
	result, err := p.CreatePlanOptions(ctx, req, numOptions)
	if result != nil {
		a.recordMetas(ctx, result.Meta)
	}
	return result, err
}

// ShoppingList aggregates ingredients for the given recipes. With
// consolidate set, the mechanical list is additionally reworked by the LLM
// into a store-friendly version.
func (a *App) ShoppingList(ctx context.Context, ids []int64, scaleServings map[int64]int, consolidate bool) (*shopping.ShoppingList, string, error) {
	list, err := shopping.NewGenerator(a.RecipeRepo).FromRecipeIDs(ctx, ids, scaleServings)
	if err != nil {
		return nil, "", err
	}

	if !consolidate || list.Len() == 0 {
		return list, "", nil
	}

	textGen, err := a.textGen(ctx)
	if err != nil {
		return list, "", err
	}
	text, meta, err := shopping.NewConsolidator(textGen).Consolidate(ctx, list)
	if err != nil {
		return list, "", err
	}
	a.recordMetas(ctx, []shared.CallMeta{meta})
	return list, text, nil
}

// ImportURL imports a recipe from a web page.
func (a *App) ImportURL(ctx context.Context, url string) (int64, *recipe.RecipeExtract, error) {
	textGen, err := a.textGen(ctx)
	if err != nil {
		return 0, nil, err
	}
	return webimport.NewImporter(textGen, a.RecipeRepo).ImportURL(ctx, url)
}

func (a *App) recordMetas(ctx context.Context, metas []shared.CallMeta) {
	for _, m := range metas {
		if err := a.MetricsStore.RecordMeta(ctx, m); err != nil {
			log.Printf("Failed to record metrics: %v", err)
		}
	}
}

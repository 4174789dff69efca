package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"cookplanner/internal/app"
	"cookplanner/internal/config"
	"cookplanner/internal/planner"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shopping"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	ctx := context.Background()

	switch os.Args[1] {
	case "init-db":
		// app.New already bootstraps the schema.
		fmt.Printf("Database ready at %s\n", cfg.DBPath())

	case "config-check":
		runConfigCheck(cfg)

	case "sync":
		stats, err := application.Sync(ctx)
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		fmt.Printf("Sync complete: %d new, %d updated, %d skipped, %d errors, %d pages extracted\n",
			stats.New, stats.Updated, stats.Skipped, stats.Errors, stats.PagesExtracted)

	case "extract":
		if len(os.Args) < 3 {
			log.Fatal("Usage: cookplanner extract <image-path>")
		}
		ids, err := application.Extract(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		fmt.Printf("Extracted %d new recipe(s)\n", len(ids))
		for _, id := range ids {
			if r, err := application.RecipeRepo.Get(ctx, id); err == nil && r != nil {
				fmt.Printf("  ID %d: %s\n", r.ID, r.TitleEN)
			}
		}

	case "extract-batch":
		stats, err := application.ExtractBatch(ctx)
		if err != nil {
			log.Fatalf("Batch extraction failed: %v", err)
		}
		fmt.Printf("Batch complete: %d images, %d extracted, %d skipped, %d errors, %d recipes\n",
			stats.Total, stats.Extracted, stats.Skipped, stats.Errors, stats.RecipeCount)

	case "list":
		listCmd := flag.NewFlagSet("list", flag.ExitOnError)
		tag := listCmd.String("tag", "", "Filter by tag")
		limit := listCmd.Int("limit", 50, "Maximum recipes to show")
		listCmd.Parse(os.Args[2:])

		recipes, err := application.RecipeRepo.List(ctx, *tag, *limit)
		if err != nil {
			log.Fatalf("Failed to list recipes: %v", err)
		}
		printRecipeTable(recipes)

	case "search":
		if len(os.Args) < 3 {
			log.Fatal("Usage: cookplanner search <query>")
		}
		recipes, err := application.RecipeRepo.Search(ctx, strings.Join(os.Args[2:], " "), 50)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}
		printRecipeTable(recipes)

	case "show":
		if len(os.Args) < 3 {
			log.Fatal("Usage: cookplanner show <recipe-id>")
		}
		id, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("Not a recipe ID: %s", os.Args[2])
		}
		r, err := application.RecipeRepo.Get(ctx, id)
		if err != nil {
			log.Fatalf("Failed to load recipe: %v", err)
		}
		if r == nil {
			log.Fatalf("Recipe %d not found", id)
		}
		printRecipe(r)

	case "import":
		if len(os.Args) < 3 {
			log.Fatal("Usage: cookplanner import <url>")
		}
		id, extract, err := application.ImportURL(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported: %s (ID %d)\n", extract.TitleEN, id)

	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		days := planCmd.Int("days", 7, "Number of days to plan")
		servings := planCmd.Int("servings", 2, "Servings per dinner")
		options := planCmd.Int("options", 3, "Number of plan options")
		preferences := planCmd.String("preferences", "", "Free-form preferences")
		exclude := planCmd.String("exclude", "", "Comma-separated ingredients to avoid")
		planCmd.Parse(os.Args[2:])

		req := planner.Request{
			UserID:      "cli",
			NumDays:     *days,
			Servings:    *servings,
			Preferences: *preferences,
		}
		if *exclude != "" {
			req.ExcludedIngredients = strings.Split(*exclude, ",")
		}

		result, err := application.Plan(ctx, req, *options)
		if err != nil {
			log.Fatalf("Planning failed: %v", err)
		}
		printPlanOptions(result)

	case "choose":
		if len(os.Args) < 4 {
			log.Fatal("Usage: cookplanner choose <request-id> <option-number>")
		}
		requestID, err1 := strconv.ParseInt(os.Args[2], 10, 64)
		optionNumber, err2 := strconv.Atoi(os.Args[3])
		if err1 != nil || err2 != nil || optionNumber < 1 {
			log.Fatal("Usage: cookplanner choose <request-id> <option-number>")
		}
		if err := application.PlanRepo.UpdateChosenOption(ctx, requestID, optionNumber-1); err != nil {
			log.Fatalf("Failed to record choice: %v", err)
		}
		fmt.Printf("Recorded option %d for request %d\n", optionNumber, requestID)

	case "shopping-list":
		shopCmd := flag.NewFlagSet("shopping-list", flag.ExitOnError)
		consolidate := shopCmd.Bool("consolidate", false, "Rework the list with the LLM")
		servings := shopCmd.String("servings", "", "Scale overrides as id=servings,id=servings")
		shopCmd.Parse(os.Args[2:])

		if shopCmd.NArg() == 0 {
			log.Fatal("Usage: cookplanner shopping-list [--consolidate] [--servings 3=4] <id> [id...]")
		}

		var ids []int64
		for _, arg := range shopCmd.Args() {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				log.Fatalf("Not a recipe ID: %s", arg)
			}
			ids = append(ids, id)
		}

		overrides, err := parseServingsOverrides(*servings)
		if err != nil {
			log.Fatal(err)
		}

		list, consolidated, err := application.ShoppingList(ctx, ids, overrides, *consolidate)
		if err != nil {
			if list == nil {
				log.Fatalf("Failed to build shopping list: %v", err)
			}
			log.Printf("Consolidation failed, showing raw list: %v", err)
		}
		printShoppingList(list)
		if consolidated != "" {
			fmt.Println("\nConsolidated:")
			fmt.Println(consolidated)
		}

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.MetricsStore.Cleanup(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Removed %d old metric records\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// parseServingsOverrides parses "3=4,7=2" into per-recipe target servings.
func parseServingsOverrides(s string) (map[int64]int, error) {
	if s == "" {
		return nil, nil
	}
	overrides := make(map[int64]int)
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid servings override: %s", pair)
		}
		id, err1 := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		n, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil || n <= 0 {
			return nil, fmt.Errorf("invalid servings override: %s", pair)
		}
		overrides[id] = n
	}
	return overrides, nil
}

func printRecipeTable(recipes []recipe.Recipe) {
	if len(recipes) == 0 {
		fmt.Println("No recipes found.")
		return
	}

	rows := make([][]string, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.TitleEN,
			r.TitleJP,
			strconv.Itoa(r.Servings),
			strings.Join(r.Tags, ", "),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Title", "Title (JP)", "Servings", "Tags"},
		rows,
		0, 3,
	))
}

func printRecipe(r *recipe.Recipe) {
	fmt.Printf("%s", r.TitleEN)
	if r.TitleJP != "" {
		fmt.Printf(" (%s)", r.TitleJP)
	}
	fmt.Printf("\nID %d | Servings: %d", r.ID, r.Servings)
	if len(r.Tags) > 0 {
		fmt.Printf(" | Tags: %s", strings.Join(r.Tags, ", "))
	}
	fmt.Println()
	if r.SummaryEN != "" {
		fmt.Printf("\n%s\n", r.SummaryEN)
	}
	if r.SourceFile != "" {
		fmt.Printf("\nSource: %s", r.SourceFile)
		if r.PageNumber > 0 {
			fmt.Printf(" (page %d)", r.PageNumber)
		}
		fmt.Println()
	}

	fmt.Println("\nIngredients:")
	for _, ing := range r.Ingredients {
		line := strings.TrimSpace(strings.TrimSpace(ing.Quantity+" "+ing.Unit) + " " + ing.NameEN)
		if ing.NameJP != "" {
			line += fmt.Sprintf(" (%s)", ing.NameJP)
		}
		if ing.SauceReference != "" {
			line += fmt.Sprintf(" [%s]", ing.SauceReference)
		}
		fmt.Printf("  - %s\n", line)
	}

	fmt.Println("\nInstructions:")
	for _, step := range r.Instructions {
		fmt.Printf("  %d. %s\n", step.StepNumber, step.TextEN)
	}
}

func printPlanOptions(result *planner.PlanResult) {
	fmt.Printf("Request %d\n", result.RequestID)
	for i, plan := range result.Plans {
		fmt.Printf("\nOption %d:\n", i+1)
		for _, d := range plan.Dinners {
			fmt.Printf("  %s: %s (ID %d)\n", d.Day, d.RecipeTitle, d.RecipeID)
		}
		if plan.Reasoning != "" {
			fmt.Printf("  Reasoning: %s\n", plan.Reasoning)
		}
	}
	fmt.Printf("\nRecord your pick with: cookplanner choose %d <option-number>\n", result.RequestID)
}

func printShoppingList(list *shopping.ShoppingList) {
	if list.Len() == 0 {
		fmt.Println("No ingredients found.")
		return
	}
	for _, category := range list.Categories() {
		fmt.Printf("%s:\n", category)
		for _, item := range list.ItemsIn(category) {
			line := strings.TrimSpace(strings.TrimSpace(item.Quantity+" "+item.Unit) + " " + item.NameEN)
			if item.NameJP != "" {
				line += fmt.Sprintf(" (%s)", item.NameJP)
			}
			if len(item.Recipes) > 1 {
				line += fmt.Sprintf(" (used in %d recipes)", len(item.Recipes))
			}
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()
	}
}

func runConfigCheck(cfg *config.Config) {
	fmt.Println("Configuration:")
	fmt.Printf("  Model:        %s\n", cfg.GeminiModelName)
	fmt.Printf("  Data dir:     %s\n", cfg.DataDir)
	fmt.Printf("  Database:     %s\n", cfg.DBPath())
	fmt.Printf("  Images dir:   %s\n", cfg.ImagesDir())

	if err := cfg.ValidateSync(); err != nil {
		fmt.Printf("  Drive sync:   not configured (%v)\n", err)
	} else {
		fmt.Printf("  Drive sync:   folder %s\n", cfg.DriveFolderID)
	}
	if cfg.TelegramBotToken != "" {
		fmt.Println("  Telegram:     configured")
	} else {
		fmt.Println("  Telegram:     not configured")
	}
}

func printUsage() {
	fmt.Println("Usage: cookplanner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init-db            Create the database schema")
	fmt.Println("  config-check       Show the active configuration")
	fmt.Println("  sync               Sync cookbook files from Google Drive")
	fmt.Println("  extract <image>    Extract recipes from one page image")
	fmt.Println("  extract-batch      Extract recipes from all synced images")
	fmt.Println("  list               List recipes (--tag, --limit)")
	fmt.Println("  search <query>     Search recipes by title or ingredient")
	fmt.Println("  show <id>          Show one recipe in full")
	fmt.Println("  import <url>       Import a recipe from a web page")
	fmt.Println("  plan               Generate dinner plan options (--days, --servings, --options)")
	fmt.Println("  choose <req> <n>   Record which plan option you picked")
	fmt.Println("  shopping-list      Build a shopping list (--consolidate, --servings)")
	fmt.Println("  metrics-cleanup    Remove old metric records (--days)")
}

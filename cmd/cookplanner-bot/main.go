package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cookplanner/internal/config"
	"cookplanner/internal/database"
	"cookplanner/internal/llm"
	"cookplanner/internal/metrics"
	"cookplanner/internal/planner"
	"cookplanner/internal/recipe"
	"cookplanner/internal/shopping"
	"cookplanner/internal/telegram"
	"cookplanner/internal/webimport"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramBotToken == "" || cfg.TelegramWebhookURL == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN and TELEGRAM_WEBHOOK_URL must be set")
	}

	ctx := context.Background()

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	db, err := database.NewDB(cfg.DBPath())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	dinnerPlanner := planner.NewPlanner(recipeRepo, planRepo, geminiClient)
	shoppingGen := shopping.NewGenerator(recipeRepo)
	consolidator := shopping.NewConsolidator(geminiClient)
	importer := webimport.NewImporter(geminiClient, recipeRepo)

	bot, err := telegram.NewBot(cfg, dinnerPlanner, planRepo, recipeRepo, shoppingGen, consolidator, importer, metricsStore)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Printf("Telegram bot server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

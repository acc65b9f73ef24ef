package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealweek/internal/app"
	"mealweek/internal/catalog"
	"mealweek/internal/clipper"
	"mealweek/internal/config"
	"mealweek/internal/database"
	"mealweek/internal/llm"
	"mealweek/internal/metrics"
	"mealweek/internal/plan"
	"mealweek/internal/shoppinglist"
	"mealweek/internal/storage"
	"mealweek/internal/telegram"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var (
		catalogStore catalog.Store
		planStore    plan.Store
		metricsStore *metrics.Store
	)

	switch cfg.StorageBackend {
	case config.BackendSQLite:
		db, err := database.NewDB(cfg.DatabasePath())
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		catalogStore = database.NewCatalogStore(db.SQL)
		planStore = database.NewPlanStore(db.SQL)
		metricsStore = metrics.NewStore(db.SQL)
	default:
		cs, err := storage.NewCatalogStore(cfg.CatalogPath())
		if err != nil {
			log.Fatalf("Failed to initialize catalog store: %v", err)
		}
		ps, err := storage.NewPlanStore(cfg.PlanPath())
		if err != nil {
			log.Fatalf("Failed to initialize plan store: %v", err)
		}
		catalogStore, planStore = cs, ps
	}

	cat, err := catalog.New(catalogStore)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	grid, err := plan.NewGrid(planStore, cfg.ActiveDays(), cfg.ActiveMeals())
	if err != nil {
		log.Fatalf("Failed to load plan: %v", err)
	}

	var recipeClipper *clipper.Clipper
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		recipeClipper = clipper.NewClipper(geminiClient)
	} else {
		log.Println("GEMINI_API_KEY not set; URL clipping disabled")
	}

	application := app.NewApp(cfg, cat, grid, shoppinglist.NewCompositor(), recipeClipper, metricsStore)

	bot, err := telegram.NewBot(cfg, application)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
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
		log.Printf("Telegram Bot Server listening on port %s", port)
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

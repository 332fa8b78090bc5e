package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"chartanalyst/configs"
	"chartanalyst/internal/adapter"
	"chartanalyst/internal/adapter/telegram"
	"chartanalyst/internal/database"
	delivery "chartanalyst/internal/delivery/http"
	"chartanalyst/internal/domain"
	"chartanalyst/internal/infra"
	custommiddleware "chartanalyst/internal/middleware"
	"chartanalyst/internal/repository"
	"chartanalyst/internal/service"
	"chartanalyst/internal/usecase"
	"chartanalyst/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Load configuration, refusing to start without an API key
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	location := utils.SetLocation(cfg.Timezone)

	ctx := context.Background()

	// History storage: PostgreSQL when configured, memory otherwise
	var db *pgxpool.Pool
	var analysisRepo domain.AnalysisRepository
	if cfg.Database.URL != "" {
		db, err = infra.NewDatabase(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		analysisRepo = repository.NewAnalysisRepository(db)
	} else {
		log.Println("[WARN] DATABASE_URL not set, analysis history is kept in memory")
		analysisRepo = repository.NewMemoryAnalysisRepository()
	}

	// Inference client
	gemini, err := adapter.NewGeminiClient(ctx, adapter.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		BaseURL: cfg.Gemini.BaseURL,
		Timeout: cfg.Gemini.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	analyzer := usecase.NewChartAnalyzer(gemini, cfg.Gemini.Timeout)

	// Notifications
	notifier := telegram.NewNotificationService(telegram.Config{
		BotToken:      cfg.Telegram.BotToken,
		ChatID:        cfg.Telegram.ChatID,
		MinConfidence: cfg.Telegram.MinConfidence,
	}, location)
	if notifier.Enabled() {
		log.Printf("[OK] Telegram notifications enabled (min confidence %d%%)", cfg.Telegram.MinConfidence)
	}

	// Services
	history := service.NewHistoryService(analysisRepo, notifier, gemini.Name())
	sessions := service.NewSessionStore(service.NewControllerFactory(analyzer, cfg.Gemini.Timeout, history.Hook()))

	scheduler := infra.NewScheduler(sessions, history, infra.SchedulerConfig{
		SessionIdleTTL:   cfg.Session.IdleTTL,
		HistoryRetention: cfg.History.Retention(),
		HistoryPurgeSpec: cfg.History.PurgeCron,
	})
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Echo app: web UI and JSON API
	templates, err := delivery.ParseTemplates()
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	delivery.SetupRoutes(e, &delivery.RouterConfig{
		WebHandler: delivery.NewWebHandler(templates, sessions, history, cfg.Upload.MaxBytes, gemini.Name()),
		APIHandler: delivery.NewAPIHandler(analyzer, history, cfg.Upload.MaxBytes, gemini.Name()),
		Sessions:   custommiddleware.NewSessionManager(cfg.Session.Secret, 7*24*time.Hour, cfg.IsProduction()),
		MaxUpload:  cfg.Upload.MaxBytes,
	})

	// Root router: ops endpoints, everything else goes to echo
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(db, sessions, gemini.Name()))
	r.Mount("/", e)

	// Start HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Chart Analyst starting on %s", addr)
	log.Printf("📊 Environment: %s", cfg.Server.Env)
	log.Printf("🤖 Model: %s (timeout %s)", gemini.Name(), cfg.Gemini.Timeout)
	log.Println("========================================")

	// Write timeout covers the synchronous API, which waits on the model
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Gemini.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown: %v", err)
	}

	// Let running analyses finish so their history is written
	drainCtx, cancelDrain := context.WithTimeout(context.Background(), cfg.Gemini.Timeout)
	defer cancelDrain()
	if err := sessions.Drain(drainCtx); err != nil {
		log.Printf("[WARN] Analyses still running at exit: %v", err)
	}

	log.Println("[OK] Server exited gracefully")
}

// handleHealth reports liveness plus history storage state
func handleHealth(db *pgxpool.Pool, sessions *service.SessionStore, model string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"service":   "chart-analyst",
			"model":     model,
			"database":  infra.DatabaseStatus(r.Context(), db),
			"sessions":  sessions.Len(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}

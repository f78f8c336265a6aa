// Customer support chat server for the Rups storefront widget.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spurlabs/spur-chat/internal/api"
	"github.com/spurlabs/spur-chat/internal/chat"
	"github.com/spurlabs/spur-chat/internal/config"
	"github.com/spurlabs/spur-chat/internal/llm"
	"github.com/spurlabs/spur-chat/internal/middleware"
	"github.com/spurlabs/spur-chat/internal/store"
	"github.com/spurlabs/spur-chat/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"model", cfg.Generation.Model,
		"context_window", cfg.Generation.ContextWindow,
		"dev", cfg.IsDevelopment())

	// Initialize dependencies.
	repo, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Database health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connected")

	// The generator is constructed here but only dials Gemini on first use,
	// so a missing credential fails requests, not startup.
	if cfg.Generation.APIKey == "" {
		slog.Warn("GEMINI_API_KEY not set; message requests will receive the fallback reply")
	}
	generator := llm.NewGemini(llm.Config{
		APIKey:          cfg.Generation.APIKey,
		Model:           cfg.Generation.Model,
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		Timeout:         cfg.Generation.Timeout,
	}, logger)

	windowBuilder := chat.NewWindowBuilder(repo, cfg.Generation.ContextWindow)
	chatService := chat.NewService(repo, generator, windowBuilder, logger)
	handler := api.NewHandler(chatService)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	corsOrigins := []string{"*"}
	if cfg.FrontendURL != "" {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	// API routes.
	handler.RegisterRoutes(r)

	// Serve the embedded widget page for everything else.
	r.Handle("/*", web.WidgetHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Generation.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

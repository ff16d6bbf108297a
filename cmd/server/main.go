// Personal finance planning assistant server.
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

	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/agent"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/api"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/config"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/knowledge"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/middleware"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/provider"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/store"
	"github.com/HARSHALK2598/PersonalFinanceAIAgents/internal/ws"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
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

	slog.Info("Starting server", "port", cfg.Port, "dev", cfg.IsDevelopment())

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

	backend := provider.New(provider.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		ChatModel:  cfg.ChatModel,
		EmbedModel: cfg.EmbeddingModel,
	})

	kb := knowledge.NewBase(backend)
	if err := kb.Seed(context.Background()); err != nil {
		slog.Error("Failed to seed knowledge base", "error", err)
		os.Exit(1)
	}

	assistant := agent.NewPersonalAssistant(
		repo,
		agent.NewProfileAgent(backend),
		agent.NewPlannerAgent(backend),
		kb,
		cfg.UpstreamTimeout,
	)

	// Initialize handlers.
	registry := ws.NewRegistry()
	wsHandler := ws.NewHandler(assistant, registry, cfg.FrontendURL, cfg.IsDevelopment())
	apiHandler := api.NewHandler(repo, kb, registry)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// Wildcard only in development; production pins the configured frontend.
	corsOrigins := []string{"*"}
	if !cfg.IsDevelopment() {
		corsOrigins = []string{cfg.FrontendURL}
	}
	r.Use(middleware.CORS(corsOrigins))

	apiHandler.RegisterRoutes(r)

	// WebSocket endpoint.
	r.Get("/ws", wsHandler.ServeHTTP)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // WebSocket turns can outlive any fixed write deadline.
		IdleTimeout:  120 * time.Second,
	}

	// Start session expiry worker.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store.StartExpiryWorker(ctx, repo, cfg.SessionTTL, registry.CloseSession)

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

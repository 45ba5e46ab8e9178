package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brightlisting/rewriter/internal/config"
	"github.com/brightlisting/rewriter/internal/enrich"
	"github.com/brightlisting/rewriter/internal/genai"
	"github.com/brightlisting/rewriter/internal/notify"
	"github.com/brightlisting/rewriter/internal/pipeline"
	"github.com/brightlisting/rewriter/internal/server"
	"github.com/brightlisting/rewriter/internal/storage/sqlite"
	"github.com/brightlisting/rewriter/internal/telemetry"
	"github.com/brightlisting/rewriter/internal/variations"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("LR_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.GenAI.APIKey == "" {
		log.Fatal("generation service API key is not configured")
	}

	// Initialize OpenTelemetry
	shutdown, err := telemetry.InitTracer("listing-rewriter", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer store.Close()

	// Generation client wrapped with the consolidated retry policy.
	var clientOpts []genai.ClientOption
	if cfg.GenAI.BaseURL != "" {
		clientOpts = append(clientOpts, genai.WithBaseURL(cfg.GenAI.BaseURL))
	}
	client := genai.NewClient(cfg.GenAI.APIKey, clientOpts...)

	var retrierOpts []genai.RetrierOption
	if cfg.GenAI.MaxAttempts > 0 {
		retrierOpts = append(retrierOpts, genai.WithMaxAttempts(cfg.GenAI.MaxAttempts))
	}
	if cfg.GenAI.RateLimitBaseMS > 0 {
		retrierOpts = append(retrierOpts, genai.WithRateLimitBase(time.Duration(cfg.GenAI.RateLimitBaseMS)*time.Millisecond))
	}
	if cfg.GenAI.TransientDelayMS > 0 {
		retrierOpts = append(retrierOpts, genai.WithTransientDelay(time.Duration(cfg.GenAI.TransientDelayMS)*time.Millisecond))
	}
	retrier := genai.NewRetrier(client, retrierOpts...)

	enricher := enrich.New(retrier, cfg.GenAI.Model, logger)

	var varOpts []variations.Option
	if cfg.GenAI.PromptTokenBudget > 0 {
		varOpts = append(varOpts, variations.WithPromptBudget(cfg.GenAI.PromptTokenBudget))
	}
	vargen := variations.New(retrier, cfg.GenAI.Model, logger, varOpts...)

	notifier := notify.New(notify.Config{
		LeadURL:     cfg.Webhooks.LeadURL,
		EmailURL:    cfg.Webhooks.EmailURL,
		OperatorURL: cfg.Webhooks.OperatorURL,
	}, logger)

	pipe := pipeline.New(enricher, vargen, logger,
		pipeline.WithLedger(store),
		pipeline.WithRecordStore(store),
		pipeline.WithNotifier(notifier),
	)

	handler := server.NewRewriteHandler(pipe, logger)

	srv := server.New(cfg.Server.Port, logger)
	srv.Router.Post("/v1/rewrite", handler.HandleRewrite)
	srv.Router.Get("/healthz", handler.HandleHealthz)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server failed: %v", err)
	case <-sigChan:
		logger.Info("shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		return
	}

	logger.Info("shutdown complete")
}

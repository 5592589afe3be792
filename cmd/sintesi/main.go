package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sintesi/internal/amqp"
	"sintesi/internal/config"
	apphttp "sintesi/internal/http"
	"sintesi/internal/llm"
	"sintesi/internal/llm/gemini"
	applog "sintesi/internal/log"
	"sintesi/internal/services"
	"sintesi/internal/storage"
	"sintesi/internal/trigger"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Model client is optional: without an API key the pipeline runs on
	// deterministic fallback summaries.
	var generator llm.Generator = llm.Disabled{}
	var chat llm.Generator
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		generator = llm.NewRetrying(client, cfg.GenerateAttempts, cfg.GenerateBackoff)
		chat = generator
		logger.Info("Gemini client initialized", "model", cfg.GeminiModel)
	} else {
		logger.Info("Gemini disabled - no GEMINI_API_KEY provided, using fallback summaries")
	}

	summaries := services.NewSummaryService(repo, repo, generator)

	// Expense writes fire summary refreshes through a notifier. The local
	// mode runs the pipeline in-process; amqp hands it to the worker.
	var notifier services.Notifier
	switch cfg.TriggerMode {
	case "amqp":
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		refreshNotifier := amqp.NewRefreshNotifier(amqpClient)
		defer refreshNotifier.Close()
		notifier = refreshNotifier
		logger.Info("Using AMQP summary trigger", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	default:
		dispatcher := trigger.NewDispatcher(summaries, cfg.TriggerQueueSize)
		defer dispatcher.Close()
		notifier = dispatcher
		logger.Info("Using local summary trigger", "queue_size", cfg.TriggerQueueSize)
	}

	expenses := services.NewExpenseService(repo, notifier)

	srv := apphttp.NewServer(":"+cfg.Port, summaries, expenses, chat)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 120 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting sintesi server", "port", cfg.Port, "trigger_mode", cfg.TriggerMode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

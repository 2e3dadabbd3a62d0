package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"expenseiq/internal/amqp"
	"expenseiq/internal/config"
	"expenseiq/internal/core"
	apphttp "expenseiq/internal/http"
	"expenseiq/internal/log"
	"expenseiq/internal/services"
	"expenseiq/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Classification rules: a JSON file when configured, the built-in
	// table otherwise.
	table := core.DefaultTable()
	if cfg.ClassifierRulesPath != "" {
		var err error
		table, err = core.LoadTable(cfg.ClassifierRulesPath)
		if err != nil {
			logger.Error("Failed to load classifier rules", "error", err, "path", cfg.ClassifierRulesPath)
			os.Exit(1)
		}
		logger.Info("Loaded classifier rules", "path", cfg.ClassifierRulesPath, "rules", len(table.Rules()))
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// Messaging is optional: without an AMQP URL the service runs
	// storage-only.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		events = client
		logger.Info("AMQP events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP events disabled - no AMQP_URL provided")
	}

	svc := services.NewExpenseService(repo, events, table, cfg.TopVendorsLimit)
	defer svc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger, cfg.CacheSize, cfg.RateLimitPerMinute)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting expenseiq server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}

// Command expenseiq-worker consumes expense events from the queue and
// audits the working set after every mutation.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"expenseiq/internal/amqp"
	"expenseiq/internal/config"
	"expenseiq/internal/log"
	"expenseiq/internal/storage"
	"expenseiq/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: "worker"})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	audit := worker.NewAuditWorker(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting expenseiq worker", "queue", cfg.AMQPQueue)

	err = client.ConsumeExpenseEvents(ctx, func(ev *amqp.ExpenseEvent) error {
		return audit.HandleEvent(ctx, ev)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Event consumption failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

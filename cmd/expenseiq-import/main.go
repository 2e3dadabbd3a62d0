// Command expenseiq-import loads a CSV export into the expense database
// from the command line, using the same ingestion rules as the HTTP
// upload endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"expenseiq/internal/config"
	"expenseiq/internal/core"
	"expenseiq/internal/log"
	"expenseiq/internal/services"
	"expenseiq/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentImport})
	log.SetDefault(logger)

	var csvPath string
	flag.StringVar(&csvPath, "file", "", "path to the CSV file to import")
	flag.Parse()

	if csvPath == "" && flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}
	if csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: expenseiq-import -file expenses.csv")
		os.Exit(2)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	table := core.DefaultTable()
	if cfg.ClassifierRulesPath != "" {
		var err error
		table, err = core.LoadTable(cfg.ClassifierRulesPath)
		if err != nil {
			logger.Error("Failed to load classifier rules", "error", err, "path", cfg.ClassifierRulesPath)
			os.Exit(1)
		}
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	svc := services.NewExpenseService(repo, nil, table, cfg.TopVendorsLimit)
	defer svc.Close()

	f, err := os.Open(csvPath)
	if err != nil {
		logger.Error("Failed to open CSV file", "error", err, "path", csvPath)
		os.Exit(1)
	}
	defer f.Close()

	summary, err := svc.ImportCSV(context.Background(), f)
	if err != nil {
		logger.Error("Import failed", "error", err, "path", csvPath)
		os.Exit(1)
	}

	fmt.Printf("imported %s: %d accepted, %d dropped\n", csvPath, summary.Accepted, summary.Dropped)
}

// Command cleanup purges expired dedup ledger entries once and exits.
// It is meant for an external scheduler such as a cron job or a
// Kubernetes CronJob; a non-zero exit status signals failure.
package main

import (
	"context"
	"log"
	"os"

	"catalog-analytics/internal/cleanup"
	"catalog-analytics/internal/config"
	"catalog-analytics/internal/repository/postgres"
	"catalog-analytics/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	appLogger := logger.NewWithOptions(logger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Analytics.CleanupTimeout)
	defer cancel()

	db, err := postgres.InitDB(ctx, cfg.Database.DatabaseDSN(), 2, 1, cfg.Database.ConnMaxLifetime)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		return 1
	}
	defer db.Close()

	cleaner := cleanup.NewCleaner(
		postgres.NewLedgerRepository(db),
		cfg.Analytics.DedupWindow,
		cfg.Analytics.CleanupTimeout,
		appLogger,
	)

	result, err := cleaner.Run(ctx)
	if err != nil {
		return 1
	}

	appLogger.Info("Cleanup complete", "removed", result.Removed, "cutoff", result.Cutoff)
	return 0
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog-analytics/internal/cleanup"
	"catalog-analytics/internal/config"
	"catalog-analytics/internal/domain"
	httpHandler "catalog-analytics/internal/handler/http"
	"catalog-analytics/internal/ratelimit"
	"catalog-analytics/internal/repository/postgres"
	redisrepo "catalog-analytics/internal/repository/redis"
	"catalog-analytics/internal/service"
	"catalog-analytics/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// ========================================================================
	// STEP 1: CONFIGURATION AND LOGGING
	// ========================================================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewWithOptions(logger.Options{
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	appLogger.Info("Starting catalog analytics",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
		"dedup_window", cfg.Analytics.DedupWindow,
		"unknown_client_policy", cfg.Analytics.UnknownClientPolicy,
	)

	// ========================================================================
	// STEP 2: DATABASE
	// ========================================================================
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.DatabaseDSN()); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		appLogger.Info("Database schema up to date")
	}

	ctx := context.Background()
	db, err := postgres.InitDB(
		ctx,
		cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	appLogger.Info("Database connection established")

	// ========================================================================
	// STEP 3: REDIS (OPTIONAL)
	// ========================================================================
	// Without Redis the service still deduplicates through the ledger; it
	// only loses the cache fast path and rate limiting.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisrepo.InitRedis(cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without cache and rate limiting", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			appLogger.Info("Redis connection established")
		}
	}

	// ========================================================================
	// STEP 4: DEPENDENCY WIRING
	// ========================================================================
	ledgerRepo := postgres.NewLedgerRepository(db)
	eventStore := postgres.NewEventStore(db)
	reader := postgres.NewAnalyticsReader(db)

	cleaner := cleanup.NewCleaner(ledgerRepo, cfg.Analytics.DedupWindow, cfg.Analytics.CleanupTimeout, appLogger)
	if spec := cfg.Analytics.CleanupSchedule; spec != "" {
		if err := cleaner.Start(spec); err != nil {
			log.Fatalf("Failed to schedule cleanup: %v", err)
		}
	}

	// Interface values stay nil unless enabled so the service sees "no cache".
	var dedupCache service.DedupCache
	if redisClient != nil && cfg.Analytics.DedupCacheEnabled {
		dedupCache = redisrepo.NewDedupCache(redisClient)
	}

	var limiter httpHandler.RateLimiter
	if redisClient != nil && cfg.App.RateLimitEnabled {
		limiter = ratelimit.NewFixedWindowLimiter(redisClient, "ratelimit:track", cfg.App.RateLimitPerMinute, time.Minute)
	}

	// Config validation already rejected unknown values.
	policy, _ := domain.ParseUnknownClientPolicy(cfg.Analytics.UnknownClientPolicy)

	ingestService := service.NewIngestService(eventStore, dedupCache, cleaner, service.IngestConfig{
		Window:              cfg.Analytics.DedupWindow,
		CleanupProbability:  cfg.Analytics.CleanupProbability,
		UnknownClientPolicy: policy,
	}, appLogger)
	reportService := service.NewReportService(reader)

	handler := httpHandler.NewHandler(ingestService, reportService, cleaner, db, appLogger)
	router := httpHandler.NewRouter(handler, appLogger, httpHandler.RouterOptions{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		EnableMetrics: cfg.App.EnableMetrics,
		Limiter:       limiter,
	})

	// ========================================================================
	// STEP 5: HTTP SERVER
	// ========================================================================
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", "error", err)
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// ========================================================================
	// STEP 6: GRACEFUL SHUTDOWN
	// ========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// Let a detached purge finish before the pool closes.
	if err := cleaner.Stop(shutdownCtx); err != nil {
		appLogger.Warn("Cleanup still running at shutdown", "error", err)
	}

	appLogger.Info("Server exited gracefully")
}

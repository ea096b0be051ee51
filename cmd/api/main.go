package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kurihiro0119/qa-dashboard-metrics/internal/aggregator"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/api"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/config"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/logging"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/normalizer"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/rating"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage/postgres"
	"github.com/kurihiro0119/qa-dashboard-metrics/internal/storage/sqlite"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Rating thresholds
	classifier := rating.NewDefaultClassifier()
	if cfg.ThresholdsFile != "" {
		thresholds, err := rating.LoadThresholds(cfg.ThresholdsFile)
		if err != nil {
			slog.Error("failed to load rating thresholds", "path", cfg.ThresholdsFile, "error", err)
			os.Exit(1)
		}
		classifier = rating.NewClassifier(thresholds)
	}

	// Initialize storage
	var store storage.Storage
	switch cfg.StorageType {
	case "postgres":
		store, err = postgres.NewPostgresStorage(cfg.PostgresURL)
		if err != nil {
			slog.Error("failed to initialize PostgreSQL storage", "error", err)
			os.Exit(1)
		}
	default:
		store, err = sqlite.NewSQLiteStorage(cfg.SQLitePath)
		if err != nil {
			slog.Error("failed to initialize SQLite storage", "path", cfg.SQLitePath, "error", err)
			os.Exit(1)
		}
	}
	defer store.Close()

	// Initialize dashboard
	dashboard := aggregator.NewDashboard(store, normalizer.New(classifier), aggregator.WithLocation(loc))

	// Initialize handler
	handler := api.NewHandler(dashboard, cfg.TimelineDays, loc)

	// Setup routes
	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRoutes(handler, slog.Default())

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	slog.Info("starting API server", "addr", addr, "storage", cfg.StorageType, "timezone", loc.String())

	if err := router.Run(addr); err != nil {
		slog.Error("server stopped", "error", err)
		store.Close()
		os.Exit(1)
	}
}

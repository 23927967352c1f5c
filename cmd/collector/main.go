// Command collector polls Steamlytics on a cron schedule and stores
// popularity rankings, exchange rates and tracked item prices in
// PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rickgao/steamlytics/api"
	"github.com/rickgao/steamlytics/internal/catalog"
	"github.com/rickgao/steamlytics/internal/config"
	"github.com/rickgao/steamlytics/internal/database"
	"github.com/rickgao/steamlytics/internal/poller"
	"github.com/rickgao/steamlytics/internal/version"
	"github.com/rickgao/steamlytics/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "collector: load .env:", err)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "collector: failed to load config:", err)
		os.Exit(1)
	}

	// Validate already checked the level name.
	level, _ := cfg.Log.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("collector failed", "error", err)
		os.Exit(1)
	}
	logger.Info("collector stopped")
}

func run(ctx context.Context, cfg *config.CollectorConfig, logger *slog.Logger) error {
	pool, err := database.Open(ctx, cfg.Database.Postgres, logger)
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	defer pool.Close()

	client, acct, err := api.Dial(ctx, cfg.API.Key,
		api.WithScheme(cfg.API.Scheme),
		api.WithHosts(cfg.API.AccountHost, cfg.API.MarketHost),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithUserAgent(version.UserAgent()),
	)
	if err != nil {
		return fmt.Errorf("steamlytics probe: %w", err)
	}
	logger.Info("steamlytics account",
		"plan", api.PlanName(acct.APIPlan),
		"calls_today", acct.CallsToday,
		"calls_this_minute", acct.CallsThisMinute,
	)

	registry := catalog.NewRegistry(catalog.Config{
		ReconcileInterval:  cfg.Catalog.ReconcileInterval,
		InitialLoadTimeout: cfg.API.Timeout,
	}, client, logger)

	snapshots := writer.NewSnapshotWriter(writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
	}, pool, logger)

	p := poller.New(poller.Config{
		Schedule:       cfg.Poller.Schedule,
		Concurrency:    cfg.Poller.Concurrency,
		Timeout:        cfg.Poller.Timeout,
		PopularLimit:   cfg.Poller.PopularLimit,
		TrackedItems:   cfg.Poller.TrackedItems,
		Currency:       cfg.Poller.Currency,
		Base:           cfg.Poller.Base,
		RateCurrencies: cfg.Poller.RateCurrencies,
		RunOnStart:     true,
	}, client, registry, snapshots, logger)

	healthServer := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: newHealthHandler(healthDeps{
			instanceID: cfg.Instance.ID,
			db:         pool,
			client:     client,
			catalog:    registry,
			writer:     snapshots,
			poller:     p,
			logger:     logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Metrics.Port)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server error", "error", err)
		}
	}()

	if err := registry.Start(ctx); err != nil {
		return fmt.Errorf("start item catalog: %w", err)
	}
	go logCatalogChanges(ctx, registry.SubscribeChanges(), logger)

	if err := snapshots.Start(ctx); err != nil {
		return fmt.Errorf("start writer: %w", err)
	}
	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	logger.Info("collector running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Poller first so its last snapshot still reaches the writer.
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop", "error", err)
	}
	if err := snapshots.Stop(shutdownCtx); err != nil {
		logger.Warn("writer stop", "error", err)
	}
	if err := registry.Stop(shutdownCtx); err != nil {
		logger.Warn("catalog stop", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("health server shutdown", "error", err)
	}
	return nil
}

func logCatalogChanges(ctx context.Context, changes <-chan catalog.ItemChange, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-changes:
			logger.Debug("catalog change", "event", c.EventType, "item", c.MarketHashName)
		}
	}
}

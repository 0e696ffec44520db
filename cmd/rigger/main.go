package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Rigger/internal/api"
	"github.com/MikeSquared-Agency/Rigger/internal/broker"
	"github.com/MikeSquared-Agency/Rigger/internal/buildlog"
	"github.com/MikeSquared-Agency/Rigger/internal/catalog"
	"github.com/MikeSquared-Agency/Rigger/internal/config"
	"github.com/MikeSquared-Agency/Rigger/internal/db"
	"github.com/MikeSquared-Agency/Rigger/internal/engine"
	"github.com/MikeSquared-Agency/Rigger/internal/events"
	"github.com/MikeSquared-Agency/Rigger/internal/metrics"
	"github.com/MikeSquared-Agency/Rigger/internal/recommend"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger = newLogger(cfg)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog and build log: Postgres when configured, otherwise a snapshot file
	var (
		cat  catalog.Catalog
		logs buildlog.Store
	)
	if cfg.Database.URL != "" {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if cfg.Database.Migrate {
			if err := db.InitSchema(ctx, pool); err != nil {
				logger.Error("failed to initialise schema", "error", err)
				os.Exit(1)
			}
		}
		cat = catalog.NewPostgresCatalog(pool)
		logs = buildlog.NewPostgresStore(pool)
		logger.Info("connected to database", "migrate", cfg.Database.Migrate)
	} else {
		mc, err := catalog.LoadFile(cfg.Catalog.SeedFile)
		if err != nil {
			logger.Error("failed to load catalog snapshot", "path", cfg.Catalog.SeedFile, "error", err)
			os.Exit(1)
		}
		cat = mc
		logs = buildlog.NewMemoryStore()
		logger.Warn("no database configured, serving catalog snapshot with in-memory build log",
			"path", cfg.Catalog.SeedFile)
	}

	// NATS (optional)
	var eventsClient events.Client
	if cfg.NATS.URL != "" {
		nc, err := events.NewNATSClient(ctx, cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = nc
			defer nc.Close()
			logger.Info("connected to nats")
		}
	}

	m := metrics.New(nil)

	assembler := engine.NewAssembler(cat, engine.Options{
		CandidateLimit:   cfg.Engine.CandidateLimit,
		HighTierCPUBoost: cfg.Engine.HighTierCPUBoost,
		RefinePSUWattage: cfg.Engine.RefinePSUWattage,
	}, logger)
	svc := recommend.NewService(assembler, logs, eventsClient, m, recommend.Options{
		Timeout:           cfg.AssemblyTimeout(),
		MinCompareBudgets: cfg.Compare.MinBudgets,
		MaxCompareBudgets: cfg.Compare.MaxBudgets,
	}, logger)

	// Broker
	b := broker.New(eventsClient, svc, m, cfg.NATS.RequestSubject, logger)
	if err := b.Start(ctx); err != nil {
		logger.Error("failed to subscribe to build requests", "error", err)
		os.Exit(1)
	}
	defer b.Stop()
	logger.Info("broker started", "subject", cfg.NATS.RequestSubject, "events", eventsClient != nil)

	// API server
	router := api.NewRouter(svc, logs, cat, api.RouterConfig{
		AdminToken:         cfg.Server.AdminToken,
		RateLimitPerMinute: cfg.Server.RateLimitPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(cat),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
	cancel()

	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Logging.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

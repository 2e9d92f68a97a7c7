package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/tillview/tillview-backend/api/routes"
	"github.com/tillview/tillview-backend/internal/catalog"
	"github.com/tillview/tillview-backend/internal/checkout"
	"github.com/tillview/tillview-backend/internal/reminders"
	"github.com/tillview/tillview-backend/internal/sales"
	"github.com/tillview/tillview-backend/internal/settlement"
	"github.com/tillview/tillview-backend/pkg/config"
	"github.com/tillview/tillview-backend/pkg/db"
	"github.com/tillview/tillview-backend/pkg/logger"
	"github.com/tillview/tillview-backend/pkg/metrics"
	"github.com/tillview/tillview-backend/pkg/migrate"
	"github.com/tillview/tillview-backend/pkg/redis"
)

const janitorInterval = 5 * time.Minute

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(
		dbClient,
		sales.NewRepository(dbClient.DB()),
		func(tx *gorm.DB) sales.StockDecrementer { return catalogRepo.WithTx(tx) },
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	remindersService, err := reminders.NewService(reminders.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create reminders service", err)
		os.Exit(1)
	}

	coordinator, err := settlement.NewCoordinator(salesService, remindersService, settlementMetrics, cfg.Settlement, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement coordinator", err)
		os.Exit(1)
	}

	manager, err := checkout.NewManager(catalogService, coordinator, cfg.Settlement, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout manager", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go manager.RunJanitor(rootCtx, janitorInterval)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(rootCtx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			IdempotencyStore: redisClient,
			Registry:         registry,
			Settlement:       cfg.Settlement,
			Checkout:         manager,
			Catalog:          catalogService,
			Sales:            salesService,
			Reminders:        remindersService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-rootCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		if serveErr := <-errCh; serveErr != nil && serveErr != http.ErrServerClosed {
			err = multierr.Append(err, serveErr)
		}
		if err != nil {
			logg.Error(ctx, "api server shutdown incomplete", err)
			os.Exit(1)
		}
		logg.Info(ctx, "api server stopped")
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/cjdworks/stockpos-backend/api/routes"
	"github.com/cjdworks/stockpos-backend/internal/changes"
	"github.com/cjdworks/stockpos-backend/internal/inventory"
	"github.com/cjdworks/stockpos-backend/internal/ledger"
	"github.com/cjdworks/stockpos-backend/internal/reports"
	"github.com/cjdworks/stockpos-backend/internal/reservations"
	"github.com/cjdworks/stockpos-backend/internal/sales"
	"github.com/cjdworks/stockpos-backend/pkg/config"
	"github.com/cjdworks/stockpos-backend/pkg/db"
	"github.com/cjdworks/stockpos-backend/pkg/logger"
	"github.com/cjdworks/stockpos-backend/pkg/metrics"
	"github.com/cjdworks/stockpos-backend/pkg/migrate"
	"github.com/cjdworks/stockpos-backend/pkg/redis"
)

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

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
		if err := multierr.Append(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	notifier := changes.NewNotifier(redisClient, logg)
	streamer := changes.NewStreamer(redisClient, logg)

	ledgerRepo := ledger.NewRepository(dbClient.DB())
	ledgerService, err := ledger.NewService(ledgerRepo, ledgerMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventoryService, err := inventory.NewService(inventoryRepo, dbClient, ledgerService, notifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	reservationRepo := reservations.NewRepository(dbClient.DB())
	reservationService, err := reservations.NewService(reservationRepo, inventoryRepo, dbClient, ledgerService, notifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservation service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(inventoryRepo, dbClient, ledgerService, notifier)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient,
			httpMetrics, registry,
			inventoryService, reservationService, salesService,
			ledgerService, reportsService, streamer,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

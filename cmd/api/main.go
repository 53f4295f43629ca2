package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rdelgado-dev/stockroom-backend/api/routes"
	"github.com/rdelgado-dev/stockroom-backend/internal/alerts"
	"github.com/rdelgado-dev/stockroom-backend/internal/employees"
	"github.com/rdelgado-dev/stockroom-backend/internal/fixtures"
	"github.com/rdelgado-dev/stockroom-backend/internal/inventory"
	"github.com/rdelgado-dev/stockroom-backend/internal/reports"
	"github.com/rdelgado-dev/stockroom-backend/internal/transactions"
	"github.com/rdelgado-dev/stockroom-backend/pkg/config"
	"github.com/rdelgado-dev/stockroom-backend/pkg/db"
	"github.com/rdelgado-dev/stockroom-backend/pkg/env"
	"github.com/rdelgado-dev/stockroom-backend/pkg/instance"
	"github.com/rdelgado-dev/stockroom-backend/pkg/logger"
	"github.com/rdelgado-dev/stockroom-backend/pkg/metrics"
	"github.com/rdelgado-dev/stockroom-backend/pkg/migrate"
	"github.com/rdelgado-dev/stockroom-backend/pkg/redis"
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
	txMetrics := metrics.NewTransactionMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	ledgerRepo := transactions.NewRepository(dbClient.DB())
	fixturesRepo := fixtures.NewRepository(dbClient.DB())
	employeesRepo := employees.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())

	fixturesSvc, err := fixtures.NewService(fixturesRepo)
	requireService(logg, "fixtures", err)

	employeesSvc, err := employees.NewService(employeesRepo)
	requireService(logg, "employees", err)

	inventorySvc, err := inventory.NewService(dbClient, inventoryRepo, ledgerRepo, fixturesSvc, logg, txMetrics, cfg.Inventory)
	requireService(logg, "inventory", err)

	transactionsSvc, err := transactions.NewService(dbClient, ledgerRepo, logg, txMetrics)
	requireService(logg, "transactions", err)

	alertsSvc, err := alerts.NewService(inventoryRepo, txMetrics)
	requireService(logg, "alerts", err)

	reportsSvc, err := reports.NewService(dbClient, reportsRepo, inventoryRepo, logg, jobMetrics, cfg.Reports)
	requireService(logg, "reports", err)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, registry,
			inventorySvc, transactionsSvc, alertsSvc, reportsSvc, fixturesSvc, employeesSvc,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}

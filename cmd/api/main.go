package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/maisydat/sheetbridge/api/routes"
	"github.com/maisydat/sheetbridge/internal/attribution"
	"github.com/maisydat/sheetbridge/internal/forms"
	"github.com/maisydat/sheetbridge/internal/orders"
	"github.com/maisydat/sheetbridge/pkg/config"
	"github.com/maisydat/sheetbridge/pkg/db"
	"github.com/maisydat/sheetbridge/pkg/logger"
	"github.com/maisydat/sheetbridge/pkg/metrics"
	"github.com/maisydat/sheetbridge/pkg/migrate"
	"github.com/maisydat/sheetbridge/pkg/redis"
	"github.com/maisydat/sheetbridge/pkg/sheets"
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

	sheetsClient, err := sheets.NewClient(cfg.Sheets, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to load sheets credentials", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	sinkMetrics := metrics.NewSinkMetrics(registry)

	settingsRepo := forms.NewRepository(dbClient.DB())

	formsService, err := forms.NewService(settingsRepo, sheetsClient, sinkMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create forms service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		settingsRepo,
		orders.NewMappingRepository(dbClient.DB()),
		orders.NewExportFlags(redisClient, logg),
		sheetsClient,
		sinkMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	capturer := attribution.NewCapturer(cfg.Attribution, redisClient, logg)
	reader := attribution.NewReader()

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
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			capturer,
			reader,
			formsService,
			ordersService,
			sheetsClient,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

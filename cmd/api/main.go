package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/grupomotriz/catalogo-backend/api/routes"
	"github.com/grupomotriz/catalogo-backend/internal/brands"
	"github.com/grupomotriz/catalogo-backend/internal/catalog"
	"github.com/grupomotriz/catalogo-backend/internal/colors"
	"github.com/grupomotriz/catalogo-backend/internal/features"
	"github.com/grupomotriz/catalogo-backend/internal/media"
	"github.com/grupomotriz/catalogo-backend/internal/vehicles"
	"github.com/grupomotriz/catalogo-backend/pkg/cache"
	"github.com/grupomotriz/catalogo-backend/pkg/config"
	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	"github.com/grupomotriz/catalogo-backend/pkg/metrics"
	"github.com/grupomotriz/catalogo-backend/pkg/migrate"
	"github.com/grupomotriz/catalogo-backend/pkg/redis"
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing object storage", err)
		}
	}()

	promRegistry := prometheus.NewRegistry()
	catalogMetrics := metrics.NewCatalogMetrics(promRegistry)
	vehicleCache, err := cache.NewVehicleCache(redisClient, logg, 0)
	requireResource(logg, "vehicle cache", err)

	brandRepo, err := brands.NewRepository(dbClient.DB())
	requireResource(logg, "brand repository", err)
	colorRepo, err := colors.NewRepository(dbClient.DB())
	requireResource(logg, "color repository", err)
	featureRepo, err := features.NewRepository(dbClient.DB())
	requireResource(logg, "feature repository", err)
	vehicleRepo := vehicles.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	mediaRepo := media.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, dbClient, gcsClient, catalogMetrics, vehicleCache, logg)
	requireResource(logg, "catalog service", err)
	mediaService, err := media.NewService(mediaRepo, dbClient, gcsClient, cfg.Media.MaxUploadBytes(), catalogMetrics, vehicleCache, logg)
	requireResource(logg, "media service", err)
	vehicleService, err := vehicles.NewService(vehicleRepo, brandRepo, catalogService, vehicleCache)
	requireResource(logg, "vehicle service", err)
	colorService, err := colors.NewService(colorRepo)
	requireResource(logg, "color service", err)
	brandService, err := brands.NewService(brandRepo)
	requireResource(logg, "brand service", err)
	featureService, err := features.NewService(featureRepo, dbClient, vehicleCache)
	requireResource(logg, "feature service", err)

	router := routes.NewRouter(cfg, logg, routes.Pingers{
		DB:    dbClient,
		Redis: redisClient,
		GCS:   gcsClient,
	}, routes.Services{
		Vehicles: vehicleService,
		Catalog:  catalogService,
		Media:    mediaService,
		Colors:   colorService,
		Brands:   brandService,
		Features: featureService,
	}, promRegistry)

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
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}

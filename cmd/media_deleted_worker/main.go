package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/grupomotriz/catalogo-backend/internal/media"
	"github.com/grupomotriz/catalogo-backend/internal/media/consumer"
	"github.com/grupomotriz/catalogo-backend/pkg/cache"
	"github.com/grupomotriz/catalogo-backend/pkg/config"
	"github.com/grupomotriz/catalogo-backend/pkg/db"
	"github.com/grupomotriz/catalogo-backend/pkg/logger"
	"github.com/grupomotriz/catalogo-backend/pkg/metrics"
	"github.com/grupomotriz/catalogo-backend/pkg/pubsub"
	"github.com/grupomotriz/catalogo-backend/pkg/redis"
	"github.com/grupomotriz/catalogo-backend/pkg/storage/gcs"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "media-deletion-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "media-deletion-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	vehicleCache, err := cache.NewVehicleCache(redisClient, logg, 0)
	requireResource(ctx, logg, "vehicle cache", err)

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "object storage", err)
	defer gcsClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	mediaRepo := media.NewRepository(dbClient.DB())
	catalogMetrics := metrics.NewCatalogMetrics(prometheus.DefaultRegisterer)
	mediaService, err := media.NewService(mediaRepo, dbClient, gcsClient, cfg.Media.MaxUploadBytes(), catalogMetrics, vehicleCache, logg)
	requireResource(ctx, logg, "media service", err)

	deletionConsumer, err := consumer.NewDeletionConsumer(
		mediaService,
		pubsubClient.MediaDeletionSubscription(),
		logg,
	)
	requireResource(ctx, logg, "media deletion consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})
	logg.Info(runCtx, "media deletion worker ready")

	if err := deletionConsumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "media deletion worker not working", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

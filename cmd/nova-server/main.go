package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"
	httpadapter "github.com/couchcryptid/flood-nova/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-nova/internal/adapter/kafka"
	"github.com/couchcryptid/flood-nova/internal/adapter/mapbox"
	"github.com/couchcryptid/flood-nova/internal/adapter/postgres"
	"github.com/couchcryptid/flood-nova/internal/assistant"
	"github.com/couchcryptid/flood-nova/internal/config"
	"github.com/couchcryptid/flood-nova/internal/domain"
	"github.com/couchcryptid/flood-nova/internal/helpline"
	"github.com/couchcryptid/flood-nova/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var store helpline.Store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, postgres.Config{DSN: cfg.DatabaseURL, MaxConns: cfg.DatabaseMaxConns})
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		store = pg
		logger.Info("help requests stored in postgres")
	} else {
		store = helpline.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, help requests kept in memory")
	}

	var publisher helpline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.PublishingEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("help requests published to kafka", "topic", cfg.KafkaHelpTopic, "brokers", cfg.KafkaBrokers)
	}

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		logger.Error("failed to create id generator", "error", err)
		os.Exit(1)
	}

	help := helpline.NewService(store, publisher, geocoder, node, logger, metrics)

	engine := assistant.NewEngine(logger, metrics,
		assistant.WithReplyDelay(cfg.ReplyDelay),
		assistant.WithLocateTimeout(cfg.LocateTimeout),
		assistant.WithGeocoder(geocoder),
	)
	registry := assistant.NewRegistry(engine, cfg.SessionIdleTTL, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.AllowedOrigins, registry, help, help, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Expire idle conversations.
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		registry.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	<-sweeperDone
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

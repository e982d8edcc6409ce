package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/spin-location-service/internal/adapter/cache"
	"github.com/couchcryptid/spin-location-service/internal/adapter/google"
	httpadapter "github.com/couchcryptid/spin-location-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/spin-location-service/internal/adapter/kafka"
	"github.com/couchcryptid/spin-location-service/internal/config"
	"github.com/couchcryptid/spin-location-service/internal/domain"
	"github.com/couchcryptid/spin-location-service/internal/observability"
	"github.com/couchcryptid/spin-location-service/internal/resolver"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	client := google.NewClient(cfg.GoogleAPIKey, cfg.GoogleGeocodeURL, cfg.GoogleTimeout, cfg.GoogleRPS, metrics, logger)
	if err := client.CheckReadiness(context.Background()); err != nil {
		logger.Warn("geocoding will fail until configured", "error", err)
	}

	store := cache.NewStore(cfg.ResolveCacheSize, cfg.ResolveCacheTTL, clock)
	geocoder := cache.NewCachedGeocoder(client, store, logger)
	writes := cache.NewDebouncedWriter(store, cfg.CacheWriteDelay, clock, metrics, logger)

	// Publishing is feature-flagged via KAFKA_ENABLED.
	var (
		recorder  domain.Recorder
		publisher *kafkaadapter.Publisher
	)
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, metrics, logger)
		recorder = publisher
		logger.Info("resolution events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("resolution events disabled")
	}

	res := resolver.New(geocoder, writes, recorder, resolver.Options{
		Country: cfg.GeocodeCountry,
		State:   cfg.GeocodeState,
		KmBias:  cfg.GeocodeKmBias,
	}, metrics, logger)

	srv := httpadapter.NewServer(cfg.HTTPAddr, res, resolver.NewSessions(res), client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writes.Flush(shutdownCtx); err != nil {
		logger.Error("cache flush error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pincheck/internal/checkin"
	"pincheck/internal/config"
	"pincheck/internal/geocode"
	"pincheck/internal/jobs"
	"pincheck/internal/logger"
	"pincheck/internal/metrics"
	"pincheck/internal/server"
	"pincheck/internal/store"
	"pincheck/internal/telemetry"
	"pincheck/internal/throttle"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := logger.Init(cfg.LogLevel, !cfg.IsDev())
	defer logger.Sync()

	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatal("failed to load config file", zap.Error(err))
	}
	yamlCfg.Apply(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := telemetry.InitTracer(ctx, "pincheck", cfg.OTELEndpoint, logger.Named("telemetry"))
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	// Geocoding
	provider, err := geocode.NewProvider(geocode.ProviderConfig{
		Name:      cfg.Geocoder,
		BaseURL:   cfg.GeocoderBaseURL,
		UserAgent: cfg.GeocoderUserAgent,
		Timeout:   cfg.GeocodeTimeout,
	})
	if err != nil {
		log.Fatal("failed to build geocoder", zap.String("geocoder", cfg.Geocoder), zap.Error(err))
	}
	cache := geocode.NewCache(cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL)
	resolver := geocode.NewResolver(provider, cache, cfg.GeocodeTimeout, logger.Named("geocode"))

	// Check-in pipeline
	ledger := throttle.NewLedger(cfg.UserCooldown, cfg.OriginCooldown)
	pins := store.NewPinStore(cfg.MaxPins)
	svc := checkin.NewService(resolver, ledger, pins, logger.Named("checkin"))

	metrics.Init(pins, cache)

	sweeper := jobs.NewSweeper(cache, cfg.SweepInterval, logger.Named("sweeper"))
	go sweeper.Start(ctx)

	srv := server.New(cfg, logger.Named("server"))
	srv.RegisterRoutes(server.Deps{Service: svc, Pins: pins, Cache: cache})

	log.Info("pincheck configured",
		zap.String("geocoder", provider.Name()),
		zap.Duration("user_cooldown", cfg.UserCooldown),
		zap.Duration("origin_cooldown", cfg.OriginCooldown),
		zap.Int("max_pins", cfg.MaxPins),
	)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	cancel()

	if err := srv.Shutdown(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if shutdownTracer != nil {
		if err := shutdownTracer(flushCtx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	log.Info("server exited")
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/lowdine/lowdine/internal/api"
	"github.com/lowdine/lowdine/internal/cache"
	"github.com/lowdine/lowdine/internal/finder"
	"github.com/lowdine/lowdine/internal/geosuggest"
	"github.com/lowdine/lowdine/internal/limiter"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	_ = godotenv.Load()

	redisURL := mustEnv("REDIS_URL")
	port := getEnv("PORT", "8080")

	// Provider keys are optional: a missing key degrades that provider to a
	// handled failure so the other one can carry autocomplete alone.
	geoapifyKey := os.Getenv("GEOAPIFY_KEY")
	locationIQKey := os.Getenv("LOCATIONIQ_KEY")
	if geoapifyKey == "" {
		log.Warn("GEOAPIFY_KEY not set, primary autocomplete provider disabled")
	}
	if locationIQKey == "" {
		log.Warn("LOCATIONIQ_KEY not set, fallback autocomplete provider disabled")
	}

	corsOrigins := strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",")

	ctx := context.Background()

	// Connect to Redis (suggestion cache + rate-limit windows).
	redisClient, err := cache.Connect(ctx, redisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	// Wire dependencies.
	suggestionCache := cache.NewSuggestionCache(redisClient)
	rateLimiter := limiter.NewFixedWindow(redisClient)
	suggestService := geosuggest.NewService(
		geosuggest.NewGeoapifyClient(geoapifyKey),
		geosuggest.NewLocationIQClient(locationIQKey),
		suggestionCache,
		rateLimiter,
		log,
	)

	geocoder := finder.NewGeocodeClientWithURL(getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"))
	var restaurantFinder *finder.Finder
	if mirrors := os.Getenv("OVERPASS_MIRRORS"); mirrors != "" {
		overpass := finder.NewOverpassClientWithMirrors(strings.Split(mirrors, ","), log)
		restaurantFinder = finder.NewFinderWithClients(geocoder, overpass, log)
	} else {
		restaurantFinder = finder.NewFinderWithClients(geocoder, finder.NewOverpassClient(log), log)
	}

	handlers := api.NewHandlers(suggestService, restaurantFinder, log)
	router := api.NewRouter(handlers, &redisPingerAdapter{client: redisClient}, corsOrigins, log)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("server goroutine panicked", "recover", r)
				errCh <- fmt.Errorf("server panicked: %v", r)
			}
		}()
		log.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable not set", "key", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// redisPingerAdapter adapts redis.Client to the api health-check interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

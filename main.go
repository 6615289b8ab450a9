package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aidenappl/retail-core/cache"
	"github.com/aidenappl/retail-core/db"
	"github.com/aidenappl/retail-core/env"
	"github.com/aidenappl/retail-core/middleware"
	"github.com/aidenappl/retail-core/routes"
	"github.com/aidenappl/retail-core/services"
)

func setupLogger() {
	level, err := zerolog.ParseLevel(strings.ToLower(env.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if env.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func setupCache(ctx context.Context) cache.Cache {
	if env.CacheBackend == "redis" {
		c, err := cache.NewRedis(ctx, env.RedisURL, "retail:")
		if err == nil {
			log.Info().Msg("using redis response cache")
			return c
		}
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory cache")
	}
	return cache.NewMemory(env.CacheMaxEntries)
}

func main() {
	setupLogger()

	if env.DotEnvLoaded() {
		log.Info().Msg("loaded .env")
	}
	// Validate configuration
	if env.APIKey == "" {
		log.Warn().Msg("API_KEY is not set, authentication is disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Connect to ClickHouse
	if err := db.Connect(ctx, env.ClickHouseAddr, env.ClickHouseDatabase, env.ClickHouseUsername, env.ClickHousePassword); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to ClickHouse")
	}
	defer db.Close()

	responseCache := setupCache(ctx)
	if closer, ok := responseCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	routes.Service = services.New(db.Default(), responseCache, services.Config{
		Database:      env.ClickHouseDatabase,
		Timeout:       env.RequestTimeout,
		PromoParallel: env.PromoMaxParallel,
		DashboardTTL:  env.DashboardCacheTTL,
		DetailTTL:     env.DetailCacheTTL,
		OptionsTTL:    env.OptionsCacheTTL,
		PromoTTL:      env.PromoCacheTTL,
	})

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RecoveryMiddleware)

	r.HandleFunc("/health", routes.HealthHandler).Methods(http.MethodGet)

	// V1 API routes (rate limited, with auth middleware)
	limiter := middleware.NewRateLimiter(env.RateLimitRPS, env.RateLimitBurst, env.TrustProxy)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(limiter.Middleware)
	v1.Use(middleware.AuthMiddleware)

	v1.HandleFunc("/dashboard", routes.DashboardHandler).Methods(http.MethodGet)
	v1.HandleFunc("/detail", routes.DetailHandler).Methods(http.MethodGet)
	v1.HandleFunc("/filter-options", routes.FilterOptionsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/promo", routes.PromoHandler).Methods(http.MethodGet)

	// CORS Middleware
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"X-Requested-With", "Content-Type", "Origin", "Accept", "X-Api-Key", "X-Request-ID"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		ExposedHeaders: []string{"X-Cache", "X-Request-ID"},
	})

	server := &http.Server{
		Addr:         ":" + env.Port,
		Handler:      corsMiddleware.Handler(r),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: env.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", env.Port).Msg("retail-core running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

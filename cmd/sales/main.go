package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tair/stockroom/internal/sales"
	"github.com/tair/stockroom/internal/sales/domain"
	"github.com/tair/stockroom/internal/sales/repository"
	"github.com/tair/stockroom/internal/sequence"
	"github.com/tair/stockroom/kafka"
	"github.com/tair/stockroom/pkg/config"
	"github.com/tair/stockroom/pkg/database"
	"github.com/tair/stockroom/pkg/health"
	"github.com/tair/stockroom/pkg/logger"
	"github.com/tair/stockroom/pkg/middleware"
	"github.com/tair/stockroom/pkg/tracing"
)

func main() {
	cfg := config.Load(config.Config{
		ServiceName: "sales-service",
		HTTPPort:    "8084",
		Database:    database.Config{DBName: "stockroom"},
	})

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Dur("lock_timeout", cfg.LockTimeout).
		Msg("Starting sales service")

	// Initialize tracer
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to initialize tracer")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(ctx, tp); err != nil {
					logger.Logger.Error().Err(err).Msg("Failed to shutdown tracer")
				}
			}()
		}
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := database.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if redisClient != nil {
		defer redisClient.Close()
	}

	counter, err := sequence.NewCounter(ctx, cfg.SequenceStore, db, redisClient)
	if err != nil {
		logger.Logger.Fatal().Err(err).Str("backend", cfg.SequenceStore).Msg("Failed to initialize sequences")
	}

	var events domain.EventPublisher = domain.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers)
		if err != nil {
			logger.Logger.Error().Err(err).Msg("Sale events disabled")
		} else {
			defer publisher.Close()
			events = publisher
		}
	}

	// Initialize handler with Wire DI
	handler, err := sales.InitializeHTTPHandler(db, sequence.NewCodeGenerator(counter), events, sales.Settings{
		LockTimeout: cfg.LockTimeout,
	})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize handler")
	}

	// Setup router
	router := mux.NewRouter()
	middlewareConfig := middleware.DefaultConfig("sales-service")
	middlewareConfig.RateLimiter = middleware.NewRateLimiter(redisClient, cfg.RateLimit, time.Minute)
	middleware.Register(router, middlewareConfig)

	handler.RegisterRoutes(router)

	checker := health.NewChecker(cfg.ServiceName, 2*time.Second).Require("database", sqlDB.PingContext)
	if redisClient != nil {
		checker.Optional("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}
	checker.Register(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           middleware.CORS(middlewareConfig, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/kitchenops/backend/internal/application/analytics"
	"github.com/kitchenops/backend/internal/infrastructure/auth"
	"github.com/kitchenops/backend/internal/infrastructure/cache"
	"github.com/kitchenops/backend/internal/infrastructure/config"
	"github.com/kitchenops/backend/internal/infrastructure/logger"
	"github.com/kitchenops/backend/internal/infrastructure/persistence"
	"github.com/kitchenops/backend/internal/infrastructure/scheduler"
	"github.com/kitchenops/backend/internal/infrastructure/telemetry"
	"github.com/kitchenops/backend/internal/interfaces/http/handler"
	"github.com/kitchenops/backend/internal/interfaces/http/middleware"
	"github.com/kitchenops/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Menu Engineering Analytics API
//	@version		1.0
//	@description	Classifies dishes into stars, cash cows, puzzles and dogs from sales and recipe costs.
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Bootstrap logger for telemetry setup; replaced once the OTLP log core exists.
	bootLog, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log, err := logger.New(
		logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output},
		logsProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)),
	)
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting menu analytics service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	analyticsMetrics, err := telemetry.NewAnalyticsMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register analytics metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), cfg.Telemetry.DBSlowQueryThresh)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	resultCache, err := cache.NewResultCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create result cache", zap.Error(err))
	}
	defer func() { _ = resultCache.Close() }()

	// Repositories
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	snapshotRepo := persistence.NewGormSnapshotRepository(db.DB)
	costingRepo := persistence.NewGormCostingRepository(db.DB)
	jobRunRepo := scheduler.NewJobRunRepository(db.DB)

	// Application services
	menuService := analyticsapp.NewMenuAnalyticsService(catalogRepo, resultCache, analyticsMetrics, log,
		analyticsapp.ServiceConfig{
			ParallelThreshold: cfg.Analytics.ParallelThreshold,
			Shards:            cfg.Analytics.Shards,
			CacheTTL:          cfg.Analytics.CacheTTL,
		})
	costingService := analyticsapp.NewCostingService(costingRepo, log)
	snapshotService := analyticsapp.NewSnapshotService(menuService, costingService, snapshotRepo,
		analyticsMetrics, log, cfg.Analytics.SnapshotWindowDays)

	// Background jobs
	jobScheduler := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		QueueSize:         cfg.Scheduler.QueueSize,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
	}, snapshotService, jobRunRepo, log)
	snapshotService.SetJobScheduler(jobScheduler)

	cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.DailyCronSchedule)
	if err != nil {
		log.Fatal("Invalid scheduler.daily_cron_schedule", zap.Error(err))
	}
	cron := scheduler.NewCronScheduler(scheduler.CronConfig{
		Enabled:            cfg.Scheduler.Enabled,
		CronHour:           cronHour,
		CronMinute:         cronMinute,
		SnapshotWindowDays: cfg.Analytics.SnapshotWindowDays,
	}, jobScheduler, catalogRepo, log)

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()
	if err := jobScheduler.Start(bgCtx); err != nil {
		log.Fatal("Failed to start job scheduler", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := cron.Start(bgCtx); err != nil {
			log.Fatal("Failed to start cron scheduler", zap.Error(err))
		}
	}

	// HTTP
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          meter,
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
			AllowMethods:     cfg.HTTP.CORSAllowMethods,
			AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		},
		MaxBodySize: cfg.HTTP.MaxBodySize,
	})

	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)

	jwtService := auth.NewJWTService(cfg.JWT)
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	menuHandler := handler.NewMenuAnalyticsHandler(menuService, snapshotService)
	menuHandler.SetCronScheduler(cron)

	router.NewRouter(engine,
		router.WithAPIMiddleware(
			middleware.JWTAuthMiddlewareWithConfig(jwtConfig),
			middleware.TracingAttributeInjector(),
		),
	).
		Register(menuHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := cron.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping cron scheduler", zap.Error(err))
	}
	if err := jobScheduler.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping job scheduler", zap.Error(err))
	}
	stopBackground()

	// Flush telemetry last so shutdown spans and logs are exported
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

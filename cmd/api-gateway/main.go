package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sakthi0701/SIH2025-sub000/api/swagger"
	"github.com/sakthi0701/SIH2025-sub000/internal/handler"
	internalmiddleware "github.com/sakthi0701/SIH2025-sub000/internal/middleware"
	"github.com/sakthi0701/SIH2025-sub000/internal/repository"
	"github.com/sakthi0701/SIH2025-sub000/internal/service"
	"github.com/sakthi0701/SIH2025-sub000/pkg/cache"
	"github.com/sakthi0701/SIH2025-sub000/pkg/config"
	"github.com/sakthi0701/SIH2025-sub000/pkg/database"
	"github.com/sakthi0701/SIH2025-sub000/pkg/events"
	"github.com/sakthi0701/SIH2025-sub000/pkg/jobs"
	"github.com/sakthi0701/SIH2025-sub000/pkg/logger"
	corsmiddleware "github.com/sakthi0701/SIH2025-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/sakthi0701/SIH2025-sub000/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Timetable Optimizer API
// @version 1.0.0
// @description Genetic-algorithm timetable generation
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	readiness := map[string]handler.Pinger{"postgres": handler.PingFunc(db.PingContext)}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(nil, logr)
	cacheEnabled := false
	if cfg.Progress.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, progress cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			cacheEnabled = true
			defer cacheRepo.Close() //nolint:errcheck
			readiness["redis"] = cacheRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Progress.CacheTTL, logr, cacheEnabled)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled && len(cfg.Events.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, logr)
		logr.Info("publishing optimization events", zap.Strings("brokers", cfg.Events.Brokers), zap.String("topic", cfg.Events.Topic))
	}
	defer publisher.Close() //nolint:errcheck

	jobRepo := repository.NewOptimizationJobRepository(db)
	resultRepo := repository.NewOptimizationResultRepository(db)

	worker := service.NewOptimizationWorker(jobRepo, resultRepo, cacheSvc, publisher, metricsSvc, logr, service.OptimizationWorkerConfig{
		ProgressStep: cfg.Optimizer.ProgressStep,
		MaxRetries:   cfg.Optimizer.MaxRetries,
		CacheTTL:     cfg.Progress.CacheTTL,
	})
	queue := jobs.NewQueue("optimizations", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Optimizer.Workers,
		BufferSize: cfg.Optimizer.QueueBuffer,
		MaxRetries: cfg.Optimizer.MaxRetries,
		RetryDelay: cfg.Optimizer.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)

	optimizationSvc := service.NewOptimizationService(jobRepo, resultRepo, queue, cacheSvc, publisher, validator.New(), logr, service.OptimizationServiceConfig{
		Parameters: cfg.Optimizer.Parameters(),
		CacheTTL:   cfg.Progress.CacheTTL,
	})
	optimizationSvc.RecoverPendingJobs(ctx)

	optimizationHandler := handler.NewOptimizationHandler(optimizationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		timetables := api.Group("/timetables")
		timetables.POST("/optimizations", optimizationHandler.Submit)
		timetables.GET("/optimizations/:id", optimizationHandler.Status)
		timetables.GET("/optimizations/:id/results", optimizationHandler.Results)
		timetables.GET("/optimizations/:id/results/:rank/export", optimizationHandler.Export)
		timetables.POST("/optimizations/:id/cancel", optimizationHandler.Cancel)
		timetables.POST("/evaluate", optimizationHandler.Evaluate)

		api.GET("/metrics/summary", metricsHandler.Summary)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown incomplete", "error", err)
	}
	queue.Stop()
}

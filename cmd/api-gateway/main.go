package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-scheduler-api/api/swagger"
	"github.com/noah-isme/class-scheduler-api/internal/events"
	"github.com/noah-isme/class-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/repository"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/cache"
	"github.com/noah-isme/class-scheduler-api/pkg/config"
	"github.com/noah-isme/class-scheduler-api/pkg/database"
	"github.com/noah-isme/class-scheduler-api/pkg/jobs"
	"github.com/noah-isme/class-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-scheduler-api/pkg/middleware/requestid"
)

// @title Class Scheduler API
// @version 1.0.0
// @description Conflict detection, suggestions and recurring generation for class sessions.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, room catalogue cache disabled", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	publisher, closePublisher := buildPublisher(cfg.Events, logr)
	defer closePublisher()

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Scheduler.RoomCacheTTL, logr, redisClient != nil)

	sessionRepo := repository.NewClassSessionRepository(db)
	classRepo := repository.NewClassRepository(db)
	templateRepo := repository.NewScheduleTemplateRepository(db)

	rooms := service.NewRoomCatalogue(sessionRepo, cacheSvc, cfg.Scheduler.RoomCacheTTL)
	conflictSvc := service.NewConflictService(sessionRepo, classRepo, rooms, metrics, validate, logr, service.ConflictServiceConfig{
		SuggestionConcurrency: cfg.Scheduler.SuggestionConcurrency,
		MaxBatchSize:          cfg.Scheduler.MaxBatchSize,
	})
	sessionSvc := service.NewClassSessionService(sessionRepo, classRepo, conflictSvc, rooms, publisher, validate, logr)
	generatorSvc := service.NewSessionGeneratorService(templateRepo, sessionRepo, rooms, publisher, metrics, validate, logr)
	importSvc := service.NewImportService(conflictSvc, logr, service.ImportConfig{
		MaxFileSizeBytes: cfg.Imports.MaxFileSizeBytes,
		MaxRows:          cfg.Imports.MaxRows,
	})
	exportSvc := service.NewExportService(sessionSvc, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"postgres": db,
		"redis":    handler.PingFunc(cacheRepo.Ping),
	})
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	r.GET("/metrics/summary", ops.Summary)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), internalmiddleware.JWT(authSvc), handler.Handlers{
		Sessions:  handler.NewSessionHandler(sessionSvc, exportSvc),
		Conflicts: handler.NewConflictHandler(conflictSvc),
		Generator: handler.NewGeneratorHandler(generatorSvc),
		Imports:   handler.NewImportHandler(importSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildPublisher returns the event sink and its cleanup. Events are dropped when
// disabled or when the broker cannot be reached at startup.
func buildPublisher(cfg config.EventsConfig, logr *zap.Logger) (events.Publisher, func()) {
	if !cfg.Enabled {
		return events.NopPublisher{}, func() {}
	}

	natsPub, err := events.NewNatsPublisher(cfg.NATSURL, logr)
	if err != nil {
		logr.Warn("nats unavailable, session events disabled", zap.Error(err))
		return events.NopPublisher{}, func() {}
	}

	queued := events.NewQueuedPublisher(natsPub, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logr,
	})
	queued.Start(context.Background())
	return queued, func() {
		queued.Stop()
		if err := natsPub.Close(); err != nil {
			logr.Warn("failed to drain nats connection", zap.Error(err))
		}
	}
}

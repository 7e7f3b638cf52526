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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/shift-scheduler-api/api/swagger"
	"github.com/noah-isme/shift-scheduler-api/internal/handler"
	"github.com/noah-isme/shift-scheduler-api/internal/optimizer"
	"github.com/noah-isme/shift-scheduler-api/internal/repository"
	"github.com/noah-isme/shift-scheduler-api/internal/service"
	"github.com/noah-isme/shift-scheduler-api/pkg/cache"
	"github.com/noah-isme/shift-scheduler-api/pkg/config"
	"github.com/noah-isme/shift-scheduler-api/pkg/database"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
	"github.com/noah-isme/shift-scheduler-api/pkg/logger"
)

// @title Shift Scheduler API
// @version 1.0.0
// @description Generates and manages student work-shift schedules.
// @BasePath /api/v1
// @schemes http
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient, "shift-scheduler:", logr),
		metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil,
	)

	shifts := repository.NewShiftRepository(db)
	availability := repository.NewAvailabilityRepository(db)
	preferences := repository.NewPreferenceRepository(db)

	engine := optimizer.NewEngine(optimizer.Weights{
		Coverage:          cfg.Scheduler.CoverageWeight,
		NeutralPreference: cfg.Scheduler.NeutralPreference,
		PreferenceStep:    cfg.Scheduler.PreferenceStep,
		FairnessStep:      cfg.Scheduler.FairnessStep,
	}, cfg.Scheduler.TimeBudget, logr.Named("optimizer")).WithNodeLimit(cfg.Scheduler.NodeLimit)

	generator := service.NewScheduleGeneratorService(service.ScheduleGeneratorRepositories{
		Shifts:       shifts,
		Students:     repository.NewUserRepository(db),
		Preferences:  preferences,
		Availability: availability,
		Schedules:    repository.NewScheduleRepository(db),
		Assignments:  repository.NewScheduleAssignmentRepository(db),
		Conflicts:    repository.NewScheduleConflictRepository(db),
	}, db, engine, cacheSvc, metrics, validate, logr, service.ScheduleGeneratorConfig{
		ProposalTTL:      cfg.Scheduler.ProposalTTL,
		AlgorithmVersion: cfg.Scheduler.AlgorithmVersion,
		CacheTTL:         cfg.Cache.TTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue := jobs.NewQueue("schedule-generation", generator.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Scheduler.Workers,
		MaxRetries: cfg.Scheduler.MaxRetries,
		RetryDelay: 5 * time.Second,
		Logger:     logr.Named("jobs"),
	})
	queue.Start(ctx)
	defer queue.Stop()
	generator.AttachQueue(queue)

	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := newRouter(cfg, logr, routerDeps{
		tokens:       service.NewTokenService(cfg.JWT.Secret),
		metrics:      metrics,
		schedules:    handler.NewScheduleHandler(generator, service.NewExportService(generator, logr)),
		availability: handler.NewAvailabilityHandler(service.NewAvailabilityService(shifts, availability, preferences, db, validate, logr)),
		observe:      handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
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

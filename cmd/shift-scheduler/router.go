package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/shift-scheduler-api/internal/handler"
	"github.com/noah-isme/shift-scheduler-api/internal/middleware"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/service"
	"github.com/noah-isme/shift-scheduler-api/pkg/config"
	"github.com/noah-isme/shift-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/shift-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/shift-scheduler-api/pkg/middleware/requestid"
)

type routerDeps struct {
	tokens       middleware.TokenValidator
	metrics      *service.MetricsService
	schedules    *handler.ScheduleHandler
	availability *handler.AvailabilityHandler
	observe      *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.observe.Health)
	r.GET("/ready", deps.observe.Ready)
	r.GET("/metrics", deps.observe.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(deps.tokens))
	admin := middleware.RequireRoles(models.RoleAdmin)
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleStudent)

	api.GET("/metrics/summary", admin, deps.observe.Snapshot)

	schedules := api.Group("/schedules")
	schedules.POST("/generate", admin, deps.schedules.Generate)
	schedules.POST("/generate/async", admin, deps.schedules.GenerateAsync)
	schedules.GET("/jobs/:jobId", admin, deps.schedules.JobStatus)
	schedules.POST("/preview", admin, deps.schedules.Preview)
	schedules.POST("/preview/:proposalId/save", admin, deps.schedules.SaveProposal)
	schedules.GET("", anyRole, deps.schedules.List)
	schedules.GET("/:id", anyRole, deps.schedules.Get)
	schedules.GET("/:id/assignments", anyRole, deps.schedules.Assignments)
	schedules.GET("/:id/conflicts", anyRole, deps.schedules.Conflicts)
	schedules.GET("/:id/export", admin, deps.schedules.Export)
	schedules.POST("/:id/publish", admin, deps.schedules.Publish)
	schedules.DELETE("/:id", admin, deps.schedules.Delete)

	availability := api.Group("/availability", anyRole)
	availability.POST("/bulk", deps.availability.BulkSubmit)
	availability.GET("", deps.availability.List)
	availability.GET("/preferences", deps.availability.GetPreferences)
	availability.POST("/preferences", deps.availability.UpsertPreferences)
	availability.GET("/summary", admin, deps.availability.Summary)
	availability.GET("/students/:id", admin, deps.availability.StudentAvailability)

	return r
}

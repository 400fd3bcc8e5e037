package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/sia-project/sia-api/api/swagger"
	"github.com/sia-project/sia-api/internal/argos"
	"github.com/sia-project/sia-api/internal/blueprint"
	"github.com/sia-project/sia-api/internal/handler"
	"github.com/sia-project/sia-api/internal/middleware"
	"github.com/sia-project/sia-api/internal/repository"
	"github.com/sia-project/sia-api/internal/service"
	"github.com/sia-project/sia-api/pkg/cache"
	"github.com/sia-project/sia-api/pkg/config"
	"github.com/sia-project/sia-api/pkg/database"
	"github.com/sia-project/sia-api/pkg/export"
	"github.com/sia-project/sia-api/pkg/logger"
	corsmiddleware "github.com/sia-project/sia-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sia-project/sia-api/pkg/middleware/requestid"
)

// @title SIA API
// @version 1.0.0
// @description Academic extract ingestion and curriculum reconciliation service
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, progress report caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	mergeRepo := repository.NewMergeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	extractValidator := argos.NewValidator(cfg.Ingest.PeriodCodes)
	catalog := blueprint.NewCatalog(cfg.Blueprints.CatalogDir)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "sia-api",
	})
	blueprintSvc := service.NewBlueprintService(catalog, logr)
	crossrefSvc := service.NewCrossrefService(cfg.Ingest.TransferPrefix, logr)
	progressSvc := service.NewProgressService(studentRepo, enrollmentRepo, blueprintSvc, crossrefSvc, cacheRepo, cfg.Reports.CacheTTL, logr).WithMetrics(metricsSvc)
	ingestSvc := service.NewIngestService(extractValidator, mergeRepo, auditRepo, cacheRepo, metricsSvc, cfg.Ingest.TransferPrefix, cfg.Ingest.MaxRows, logr)
	studentSvc := service.NewStudentService(studentRepo, logr)
	exportSvc := service.NewExportService(export.NewCSVExporter(), export.NewPDFExporter(), logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	ingestHandler := handler.NewIngestHandler(ingestSvc)
	blueprintHandler := handler.NewBlueprintHandler(blueprintSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, progressSvc, exportSvc)
	programHandler := handler.NewProgramHandler(progressSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	api.GET("/students", studentHandler.List)
	api.GET("/students/:id/curriculum", studentHandler.Curriculum)
	api.GET("/students/:id/curriculum/export", studentHandler.CurriculumExport)
	api.GET("/students/:id/history", studentHandler.History)

	api.GET("/programs/:code/progress", programHandler.Progress)
	api.GET("/programs/:code/progress/export", programHandler.ProgressExport)

	api.GET("/blueprints", blueprintHandler.List)
	api.GET("/blueprints/:id", blueprintHandler.Get)
	api.GET("/imports/recent", ingestHandler.Recent)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.POST("/imports", ingestHandler.Import)
	protected.POST("/imports/validate", ingestHandler.Validate)
	protected.POST("/blueprints", blueprintHandler.Register)
	protected.POST("/blueprints/simulate", blueprintHandler.Simulate)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	internalhandler "github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Constraint-based academic timetable generator
// @BasePath /
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

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	authSvc := service.NewAuthService(nil, logr, service.AuthConfig{
		AdminUser:         cfg.Auth.AdminUser,
		AdminPasswordHash: cfg.Auth.AdminPasswordHash,
		JWTSecret:         cfg.Auth.JWTSecret,
		TokenExpiry:       cfg.Auth.TokenExpiry,
		Issuer:            "timetable-api",
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)
	api.POST("/auth/login", authHandler.Login)

	var cacheRepo service.CacheRepository
	var cacheCloser interface{ Close() error }
	if cfg.Solver.CacheEnabled {
		if client, err := cache.NewRedis(cfg.Redis); err != nil {
			logr.Sugar().Warnw("cache disabled", "error", err)
		} else {
			cacheCloser = client
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Solver.ResultCacheTTL, logr, cacheRepo != nil)

	datasetSvc := service.NewDatasetService(service.DatasetLimits{
		MaxCourses:     cfg.Datasets.MaxCourses,
		MaxInstructors: cfg.Datasets.MaxInstructors,
		MaxRooms:       cfg.Datasets.MaxRooms,
		MaxTimeslots:   cfg.Datasets.MaxTimeslots,
		RetentionTTL:   cfg.Datasets.RetentionTTL,
	}, logr)
	datasetHandler := internalhandler.NewDatasetHandler(datasetSvc)

	timetableRepo := repository.NewTimetableRepository(db)
	slotRepo := repository.NewTimetableSlotRepository(db)

	timetableSvc := service.NewTimetableService(
		datasetSvc,
		timetableRepo,
		slotRepo,
		db,
		cacheSvc,
		metricsSvc,
		nil,
		logr,
		service.TimetableConfig{
			MaxAttempts:    cfg.Solver.MaxAttempts,
			SolveTimeout:   cfg.Solver.SolveTimeout,
			AttemptBudget:  cfg.Solver.AttemptBudget,
			CandidateCap:   cfg.Solver.CandidateCap,
			ProposalTTL:    cfg.Solver.ProposalTTL,
			ResultCacheTTL: cfg.Solver.ResultCacheTTL,
		},
	)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	solveJobs := service.NewSolveJobService(timetableSvc, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
	}, logr)
	solveJobs.Start(jobCtx)
	defer func() {
		cancelJobs()
		solveJobs.Stop()
	}()

	timetableHandler := internalhandler.NewTimetableHandler(timetableSvc, solveJobs)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.POST("/datasets", datasetHandler.Upload)
	secured.GET("/datasets/:id", datasetHandler.Get)

	secured.POST("/timetables/generate", timetableHandler.Generate)
	secured.POST("/timetables/jobs", timetableHandler.EnqueueJob)
	secured.GET("/timetables/jobs/:id", timetableHandler.JobStatus)
	secured.POST("/timetables/save", timetableHandler.Save)
	secured.GET("/timetables", timetableHandler.List)
	secured.GET("/timetables/:id/slots", timetableHandler.Slots)
	secured.GET("/timetables/:id/export", timetableHandler.Export)
	secured.DELETE("/timetables/:id", timetableHandler.Delete)

	secured.GET("/system/metrics", metricsHandler.Snapshot)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/acadplan/timetable-api/api/swagger"
	"github.com/acadplan/timetable-api/internal/engine"
	"github.com/acadplan/timetable-api/internal/handler"
	"github.com/acadplan/timetable-api/internal/middleware"
	"github.com/acadplan/timetable-api/internal/oracle"
	"github.com/acadplan/timetable-api/internal/repository"
	"github.com/acadplan/timetable-api/internal/service"
	"github.com/acadplan/timetable-api/pkg/cache"
	"github.com/acadplan/timetable-api/pkg/config"
	"github.com/acadplan/timetable-api/pkg/database"
	"github.com/acadplan/timetable-api/pkg/jobs"
	"github.com/acadplan/timetable-api/pkg/logger"
	corsmiddleware "github.com/acadplan/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/acadplan/timetable-api/pkg/middleware/requestid"
)

// @title AcadPlan Timetable API
// @version 0.1.0
// @description Slot-allocation and conflict-resolution service for university timetables
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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}
	// A nil client degrades the repository to a pass-through, so the rest of
	// the wiring never branches on whether Redis is up.
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	demandRepo := repository.NewDemandRepository(db)
	versionRepo := repository.NewScheduleVersionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	grid := engine.GridParams{
		Days:        cfg.Scheduler.Days,
		SlotStarts:  cfg.Scheduler.SlotStarts,
		SlotMinutes: cfg.Scheduler.SlotMinutes,
		BreakStart:  cfg.Scheduler.BreakStart,
		BreakEnd:    cfg.Scheduler.BreakEnd,
	}
	tracker := engine.NewRoomOccupancyTracker()
	resolver := engine.NewConflictResolver(
		engine.ResolverParams{Grid: grid, MaxAttempts: cfg.Scheduler.ResolverAttempts},
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logr,
	)

	var recommender engine.Oracle
	if cfg.Oracle.Enabled {
		recommender = oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.Timeout, logr)
	}

	orchestrator := engine.NewOrchestrator(
		tracker,
		engine.NewConstraintBuilder(grid),
		recommender,
		engine.NewSectionPlacer(tracker, grid, logr),
		resolver,
		versionRepo,
		logr,
		engine.OrchestratorConfig{
			OracleTimeout:    cfg.Oracle.Timeout,
			MaxResolveRounds: cfg.Scheduler.MaxResolveRounds,
		},
	)

	metricsSvc := service.NewMetricsService()
	groupSvc := service.NewGroupService(studentRepo, cfg.Scheduler.StudentsPerGroup, logr)

	scheduleSvc := service.NewScheduleService(
		courseRepo, roomRepo, ruleRepo, demandRepo,
		versionRepo, auditRepo, groupSvc,
		orchestrator, cacheRepo, metricsSvc,
		nil, logr,
	)
	conflictSvc := service.NewConflictReportService(versionRepo, cacheRepo, cfg.Cache.ConflictTTL, logr)
	exportSvc := service.NewExportService(scheduleSvc, logr)

	// One worker keeps bulk regeneration ordered; individual runs are
	// additionally serialised inside the orchestrator.
	regenQueue := jobs.NewQueue("schedule-regeneration", service.RegenerationHandler(scheduleSvc), jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	regenQueue.Start(context.Background())
	defer regenQueue.Stop()

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, regenQueue)
	conflictHandler := handler.NewConflictHandler(conflictSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.OptionalJWT(cfg.JWT.Secret))
	{
		schedules := api.Group("/schedules")
		schedules.GET("/conflicts", conflictHandler.Report)
		schedules.POST("/generate/:level", scheduleHandler.Generate)
		schedules.POST("/regenerate", scheduleHandler.Regenerate)
		schedules.GET("/versions/:id", scheduleHandler.VersionByID)
		schedules.PUT("/versions/:id", scheduleHandler.Update)
		schedules.DELETE("/versions/:id", scheduleHandler.Delete)
		schedules.GET("/:level", scheduleHandler.Latest)
		schedules.GET("/:level/versions", scheduleHandler.Versions)
		schedules.GET("/:level/export/csv", scheduleHandler.ExportCSV(exportSvc))
		schedules.GET("/:level/export/pdf", scheduleHandler.ExportPDF(exportSvc))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

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

	_ "github.com/abogida/abogida-api/api/swagger"
	"github.com/abogida/abogida-api/internal/handler"
	"github.com/abogida/abogida-api/internal/middleware"
	"github.com/abogida/abogida-api/internal/models"
	"github.com/abogida/abogida-api/internal/repository"
	"github.com/abogida/abogida-api/internal/service"
	"github.com/abogida/abogida-api/pkg/cache"
	"github.com/abogida/abogida-api/pkg/config"
	"github.com/abogida/abogida-api/pkg/database"
	"github.com/abogida/abogida-api/pkg/export"
	"github.com/abogida/abogida-api/pkg/jobs"
	"github.com/abogida/abogida-api/pkg/logger"
	corsmiddleware "github.com/abogida/abogida-api/pkg/middleware/cors"
	reqidmiddleware "github.com/abogida/abogida-api/pkg/middleware/requestid"
	"github.com/abogida/abogida-api/pkg/storage"
)

// @title Abogida API
// @version 1.0.0
// @description School management backend: daily updates feed, attendance, dashboards
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret)

	var store storage.ObjectStorage
	var localStore *storage.LocalStorage
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Storage(cfg.Storage)
		if err != nil {
			logr.Sugar().Fatalw("failed to init s3 storage", "error", err)
		}
	default:
		localStore, err = storage.NewLocalStorage(cfg.Storage.BaseDir, signer, "/media/download")
		if err != nil {
			logr.Sugar().Fatalw("failed to init local storage", "error", err)
		}
		store = localStore
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	parentRepo := repository.NewParentRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	updateRepo := repository.NewUpdateRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	// Services
	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, true)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "abogida-api",
	})
	callerService := service.NewCallerService(userRepo, teacherRepo, parentRepo, classRepo, logr)
	updateService := service.NewUpdateService(updateRepo, mediaRepo, classRepo, store, cacheService, validate, logr, service.UpdateConfig{
		PageSize:         cfg.Feed.PageSize,
		SignedURLTTL:     cfg.Storage.SignedURLTTL,
		PreviewCacheTTL:  cfg.Feed.PreviewCacheTTL,
		MaxFileSizeBytes: cfg.Storage.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Storage.AllowedMIMEs,
	})
	attendanceService := service.NewAttendanceService(attendanceRepo, classRepo, enrollmentRepo, validate, logr)
	dashboardService := service.NewDashboardService(classRepo, updateRepo, parentRepo, announcementRepo, userRepo, cacheService, metricsService, cfg.Dashboard.CacheTTL, logr)
	classService := service.NewClassService(classRepo, logr)
	studentService := service.NewStudentService(studentRepo, logr)
	userService := service.NewUserService(userRepo, validate, logr)
	reportService := service.NewReportService(attendanceRepo, classRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	announcementService := service.NewAnnouncementService(announcementRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	warmQueue := jobs.NewQueue("preview-warm", updateService.WarmPreview, jobs.QueueConfig{
		Workers: cfg.Feed.WarmWorkers,
		Logger:  logr,
	})
	warmQueue.Start(ctx)
	defer warmQueue.Stop()
	updateService.SetWarmQueue(warmQueue)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	updateHandler := handler.NewUpdateHandler(updateService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	classHandler := handler.NewClassHandler(classService)
	studentHandler := handler.NewStudentHandler(studentService)
	userHandler := handler.NewUserHandler(userService)
	reportHandler := handler.NewReportHandler(reportService)
	announcementHandler := handler.NewAnnouncementHandler(announcementService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if localStore != nil {
		mediaHandler := handler.NewMediaHandler(localStore, signer)
		r.GET("/media/download", mediaHandler.Download)
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("", middleware.JWT(authService))
		authed.POST("/logout", authHandler.Logout)
		authed.POST("/change-password", authHandler.ChangePassword)
		authed.GET("/me", authHandler.Me)
	}

	protected := api.Group("", middleware.JWT(authService), middleware.ResolveCaller(callerService), middleware.WithResponseMeta())
	{
		protected.GET("/updates", updateHandler.ListFeed)
		protected.POST("/updates", middleware.RequireRoles(models.RoleTeacher), middleware.Audit(userRepo, "create", "daily_update"), updateHandler.Post)

		protected.GET("/classes", classHandler.List)
		protected.GET("/students", studentHandler.List)
		protected.GET("/announcements", announcementHandler.List)

		protected.POST("/attendance", middleware.RequireRoles(models.RoleTeacher), middleware.Audit(userRepo, "mark", "attendance"), attendanceHandler.Mark)
		protected.GET("/attendance", middleware.RequireRoles(models.RoleTeacher, models.RoleSchoolAdmin), attendanceHandler.List)

		protected.GET("/dashboard/teacher", middleware.RequireRoles(models.RoleTeacher), dashboardHandler.Teacher)
		protected.GET("/dashboard/parent", middleware.RequireRoles(models.RoleParent), dashboardHandler.Parent)
		protected.GET("/dashboard/admin", middleware.RequireRoles(models.RoleSchoolAdmin), dashboardHandler.Admin)
		protected.GET("/system/metrics", middleware.RequireRoles(models.RoleSchoolAdmin), metricsHandler.System)

		protected.GET("/users/me", userHandler.Profile)
		protected.PUT("/users/me", userHandler.UpdateProfile)

		if cfg.Reports.Enabled {
			protected.GET("/reports/attendance", middleware.RequireRoles(models.RoleTeacher, models.RoleSchoolAdmin), reportHandler.Attendance)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

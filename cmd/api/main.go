package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sanatan-blog/acharyas-gurus-api/api/swagger"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/handler"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/middleware"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/models"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/repository"
	"github.com/sanatan-blog/acharyas-gurus-api/internal/service"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/cache"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/config"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/database"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/logger"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/mailer"
	"github.com/sanatan-blog/acharyas-gurus-api/pkg/media"
	corsmiddleware "github.com/sanatan-blog/acharyas-gurus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sanatan-blog/acharyas-gurus-api/pkg/middleware/requestid"
)

// @title Acharyas & Gurus API
// @version 1.0.0
// @description Community platform for spiritual teachers and their content
// @BasePath /api
// @schemes http https

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	mail := mailer.New(cfg.Mail)

	uploader, err := media.NewUploader(cfg.Media)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media uploader", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	contentRepo := repository.NewContentRepository(db)

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Stats.CacheTTL, logr, false)
	}

	verificationSvc := service.NewVerificationService(userRepo, mail, validate, logr, service.VerificationConfig{
		CodeLifetime:    cfg.OTP.Lifetime,
		MaxAttempts:     cfg.OTP.MaxAttempts,
		LockoutDuration: cfg.OTP.LockoutDuration,
	})
	authSvc := service.NewAuthService(userRepo, verificationSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	contentSvc := service.NewContentService(contentRepo, cacheSvc, validate, logr,
		models.ContentStatus(cfg.Content.DefaultStatus), cfg.Stats.CacheTTL)
	moderationSvc := service.NewModerationService(contentRepo, userRepo, cacheSvc, validate, logr)
	adminSvc := service.NewAdminService(userRepo, contentRepo, cacheSvc, logr, cfg.Stats.CacheTTL, nil, nil)
	teacherSvc := service.NewTeacherService(userRepo, contentRepo, cacheSvc, logr, cfg.Stats.CacheTTL)
	profileSvc := service.NewProfileService(userRepo, uploader, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc, verificationSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, contentSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, moderationSvc)
	profileHandler := handler.NewProfileHandler(profileSvc, cfg.Media.MaxUploadSize)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/register-teacher", authHandler.RegisterTeacher)
		auth.POST("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	content := api.Group("/content", middleware.OptionalJWT(authSvc))
	{
		content.GET("", contentHandler.List)
		content.GET("/:id", contentHandler.Get)
		content.POST("/:id/like", contentHandler.Like)
	}

	teachers := api.Group("/teachers")
	{
		teachers.GET("", teacherHandler.Directory)
		teachers.GET("/:id", teacherHandler.Profile)
	}

	teacher := api.Group("/teacher", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleTeacher))
	{
		teacher.GET("/content", teacherHandler.MyContent)
		teacher.POST("/content", teacherHandler.CreateContent)
		teacher.GET("/stats", teacherHandler.MyStats)
	}

	profile := api.Group("/profile", middleware.JWT(authSvc))
	{
		profile.GET("", profileHandler.Get)
		profile.PUT("", profileHandler.Update)
		profile.POST("/image", profileHandler.UploadImage)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/teachers", adminHandler.ListTeachers)
		admin.GET("/teachers/export", adminHandler.ExportTeachers)
		admin.PATCH("/teachers/:id", adminHandler.ManageTeacher)
		admin.GET("/content", adminHandler.ListContent)
		admin.PATCH("/content/:id", adminHandler.ManageContent)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

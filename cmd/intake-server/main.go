package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/kilter-intake/api/swagger"
	"github.com/noah-isme/kilter-intake/internal/handler"
	"github.com/noah-isme/kilter-intake/internal/middleware"
	"github.com/noah-isme/kilter-intake/internal/repository"
	"github.com/noah-isme/kilter-intake/internal/service"
	"github.com/noah-isme/kilter-intake/pkg/cache"
	"github.com/noah-isme/kilter-intake/pkg/config"
	"github.com/noah-isme/kilter-intake/pkg/database"
	"github.com/noah-isme/kilter-intake/pkg/logger"
	corsmiddleware "github.com/noah-isme/kilter-intake/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/kilter-intake/pkg/middleware/requestid"
	"github.com/noah-isme/kilter-intake/pkg/storage"
)

// @title Kilter Intake API
// @version 1.0.0
// @description Video intake form with a weekly quota and a password-gated admin view
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	submissionLog, err := newSubmissionLog(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to open submission log", "backend", cfg.Storage.LogBackend, "error", err)
	}

	videos, err := storage.NewLocalStorage(cfg.Storage.VideosDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare video storage", "dir", cfg.Storage.VideosDir, "error", err)
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	if cfg.Admin.Password == "" {
		logr.Warn("ADMIN_PASSWORD is not set; admin login is disabled")
	}

	quotaSvc := service.NewQuotaService(submissionLog, cfg.Intake.WeeklyLimit, logr)
	intakeSvc := service.NewIntakeService(submissionLog, quotaSvc, videos, validator.New(), metricsSvc, logr, service.IntakeServiceConfig{
		MaxVideoSizeMB: cfg.Intake.MaxVideoSizeMB,
	})
	adminAuthSvc := service.NewAdminAuthService(newSessionStore(cfg, logr), metricsSvc, logr, service.AdminAuthConfig{
		Password:      cfg.Admin.Password,
		SessionSecret: cfg.Admin.SessionSecret,
		SessionTTL:    cfg.Admin.SessionTTL,
	})
	adminSvc := service.NewAdminService(
		quotaSvc,
		submissionLog,
		videos,
		storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL),
		nil,
		nil,
		logr,
		service.AdminServiceConfig{DownloadPath: cfg.APIPrefix + "/videos/download", Location: time.Local},
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(
		r.Group(cfg.APIPrefix),
		handler.NewIntakeHandler(intakeSvc),
		handler.NewAdminHandler(adminAuthSvc, adminSvc),
		middleware.AdminAuth(adminAuthSvc),
		logr,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting",
		"addr", addr,
		"env", cfg.Env,
		"log_backend", cfg.Storage.LogBackend,
		"weekly_limit", quotaSvc.WeeklyLimit(),
	)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func newSubmissionLog(cfg *config.Config, logr *zap.Logger) (service.SubmissionLog, error) {
	if cfg.Storage.LogBackend != config.LogBackendPostgres {
		csvLog := repository.NewCSVSubmissionLog(cfg.Storage.LogPath, time.Local)
		logr.Info("using csv submission log", zap.String("path", csvLog.Path()))
		return csvLog, nil
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, err
	}
	repo := repository.NewSubmissionRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logr.Info("using postgres submission log", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Name))
	return repo, nil
}

func newSessionStore(cfg *config.Config, logr *zap.Logger) service.AdminSessionStore {
	if !cfg.Redis.Enabled {
		return repository.NewMemoryAdminSessionRepository()
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable; admin sessions kept in memory", zap.Error(err))
		return repository.NewMemoryAdminSessionRepository()
	}
	return repository.NewRedisAdminSessionRepository(client)
}

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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studypath/studypath-api/internal/genai"
	"github.com/studypath/studypath-api/internal/handler"
	"github.com/studypath/studypath-api/internal/repository"
	"github.com/studypath/studypath-api/internal/service"
	"github.com/studypath/studypath-api/pkg/cache"
	"github.com/studypath/studypath-api/pkg/config"
	"github.com/studypath/studypath-api/pkg/database"
	"github.com/studypath/studypath-api/pkg/export"
	"github.com/studypath/studypath-api/pkg/logger"
)

// @title StudyPath API
// @version 1.0.0
// @description Curriculum tracking, progress statistics and study advice for university students
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

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	// Drafts are the only Redis consumer; the API still serves without it.
	var redisClient *redis.Client
	if client, err := cache.NewRedis(ctx, cfg.Redis); err != nil {
		logr.Warn("redis unavailable, import previews will fail", zap.Error(err))
	} else {
		redisClient = client
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	pensumRepo := repository.NewPensumRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	draftRepo := repository.NewImportDraftRepository(redisClient, logr)
	defer draftRepo.Close() //nolint:errcheck

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	pensumSvc := service.NewPensumService(pensumRepo, metricsSvc, logr)
	importSvc := service.NewImportService(draftRepo, pensumSvc, metricsSvc, service.ImportConfig{DraftTTL: cfg.Imports.DraftTTL}, logr)
	exportSvc := service.NewExportService(pensumSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr, cfg.GenAI.APIKey)
	advisorSvc := service.NewAdvisorService(pensumSvc, settingsSvc, genai.NewClient(cfg.GenAI, logr), metricsSvc, logr)

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			if redisClient == nil {
				return errors.New("not connected")
			}
			return redisClient.Ping(ctx).Err()
		},
	}

	r := newRouter(cfg, logr, routerDeps{
		auth:    authSvc,
		metrics: metricsSvc,
		handlers: handlers{
			auth:     handler.NewAuthHandler(authSvc),
			pensum:   handler.NewPensumHandler(pensumSvc, exportSvc),
			imports:  handler.NewImportHandler(importSvc),
			settings: handler.NewSettingsHandler(settingsSvc),
			advisor:  handler.NewAdvisorHandler(advisorSvc),
			metrics:  handler.NewMetricsHandler(metricsSvc, checks),
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GenAI.Timeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	case sig := <-signals:
		logr.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studypath/studypath-api/api/swagger"
	"github.com/studypath/studypath-api/internal/handler"
	"github.com/studypath/studypath-api/internal/middleware"
	"github.com/studypath/studypath-api/internal/models"
	"github.com/studypath/studypath-api/internal/service"
	"github.com/studypath/studypath-api/pkg/config"
	"github.com/studypath/studypath-api/pkg/logger"
	corsmiddleware "github.com/studypath/studypath-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studypath/studypath-api/pkg/middleware/requestid"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

type handlers struct {
	auth     *handler.AuthHandler
	pensum   *handler.PensumHandler
	imports  *handler.ImportHandler
	settings *handler.SettingsHandler
	advisor  *handler.AdvisorHandler
	metrics  *handler.MetricsHandler
}

type routerDeps struct {
	auth     tokenValidator
	metrics  *service.MetricsService
	handlers handlers
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	h := deps.handlers
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", h.metrics.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta(), middleware.BodyLimit(cfg.Imports.MaxBodyBytes))

	authRequired := middleware.JWT(deps.auth)
	authOptional := middleware.OptionalJWT(deps.auth)

	auth := api.Group("/auth")
	auth.POST("/register", h.auth.Register)
	auth.POST("/login", h.auth.Login)
	auth.POST("/refresh", h.auth.Refresh)
	auth.POST("/logout", authRequired, h.auth.Logout)

	pensums := api.Group("/pensums")
	pensums.GET("", authRequired, h.pensum.ListMine)
	pensums.POST("", authRequired, h.pensum.Create)
	pensums.POST("/validate", h.pensum.Validate)
	pensums.GET("/public", h.pensum.ListPublic)
	pensums.GET("/search", authOptional, h.pensum.Search)
	pensums.GET("/:id", authOptional, h.pensum.Get)
	pensums.PUT("/:id", authRequired, h.pensum.Update)
	pensums.DELETE("/:id", authRequired, h.pensum.Delete)
	pensums.PUT("/:id/progress", authRequired, h.pensum.UpdateProgress)
	pensums.GET("/:id/overview", authRequired, h.pensum.Overview)
	pensums.GET("/:id/export", authOptional, h.pensum.Export)

	imports := api.Group("/imports", authRequired)
	imports.POST("/preview", h.imports.Preview)
	imports.POST("/:token/confirm", h.imports.Confirm)

	settings := api.Group("/settings", authRequired)
	settings.GET("/ai", h.settings.GetAI)
	settings.PUT("/ai", h.settings.UpdateAI)
	settings.GET("/schedule", h.settings.GetSchedule)
	settings.PUT("/schedule", h.settings.UpdateSchedule)

	advisor := api.Group("/advisor", authRequired)
	advisor.POST("/test", h.advisor.Test)
	advisor.POST("/:id/recommendations", h.advisor.Recommendations)
	advisor.POST("/:id/learning-pattern", h.advisor.LearningPattern)
	advisor.POST("/:id/study-plan", h.advisor.StudyPlan)

	return r
}

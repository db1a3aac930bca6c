package main

import (
	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/handlers"
	"github.com/huangang/geoconfig/internal/metrics"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(middleware.RequestID(), logger.GinLogger(), logger.GinRecovery())
	r.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	r.Use(metrics.GinMiddleware())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	r.GET("/health", svc.healthHandler.CheckHealth)
	r.GET("/metrics", metrics.GinMetricsHandler())

	v1 := r.Group("/v1")
	if svc.rateLimiter != nil {
		v1.Use(svc.rateLimiter.Middleware())
	}
	v1.Use(middleware.APIKey(cfg.Auth.APIKey))
	{
		v1.POST("/auth/login", svc.authHandler.Login)

		// Public resolver; paginated listing is admin-checked inside the handler.
		v1.GET("/config", svc.configHandler.GetConfig)

		param := "/:" + handlers.ParamPathKey
		admin := v1.Group("/config", middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("", svc.configHandler.CreateParam)
			admin.PATCH(param, svc.configHandler.UpdateParam)
			admin.DELETE(param, svc.configHandler.DeleteParam)

			admin.GET(param+"/overrides", svc.configHandler.ListOverrides)
			admin.POST(param+"/overrides", svc.configHandler.CreateOverride)
			admin.PATCH(param+"/overrides/:country", svc.configHandler.UpdateOverride)
			admin.DELETE(param+"/overrides/:country", svc.configHandler.DeleteOverride)
		}
	}
}

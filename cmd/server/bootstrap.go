package main

import (
	"fmt"

	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/handlers"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/internal/services"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/huangang/geoconfig/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	db            *gorm.DB
	statsService  *services.StatsService
	rateLimiter   *middleware.RateLimiter
	configHandler *handlers.ConfigHandler
	authHandler   *handlers.AuthHandler
	healthHandler *handlers.HealthHandler
}

func gormLogLevel(level string) gormlogger.LogLevel {
	if level == "debug" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}

// bootstrap opens the store and wires the registries, handlers and schedulers.
func bootstrap(cfg *config.Config) (*appServices, error) {
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	if err := middleware.RegisterValidators(); err != nil {
		return nil, err
	}

	db, err := models.InitDB(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if cfg.Auth.APIKey == "" {
		logger.Warn().Msg("No public API key configured, the x-api-key check is disabled")
	}
	if cfg.Auth.AdminPasswordHash == "" {
		logger.Warn().Msg("No admin password hash configured, admin routes are unreachable")
	}

	paramService := services.NewParamService(db)
	overrideService := services.NewOverrideService(db)

	svc := &appServices{
		db:            db,
		configHandler: handlers.NewConfigHandler(paramService, overrideService, cfg.Cache.ConfigMaxAge),
		authHandler:   handlers.NewAuthHandler(&cfg.Auth),
		healthHandler: handlers.NewHealthHandler(db),
	}

	if cfg.RateLimit.Enabled {
		svc.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	if cfg.Stats.Enabled {
		svc.statsService = services.NewStatsService(db)
		if err := svc.statsService.StartScheduler(cfg.Stats.Schedule); err != nil {
			return nil, fmt.Errorf("invalid stats schedule %q: %w", cfg.Stats.Schedule, err)
		}
	}

	return svc, nil
}

// shutdown stops the schedulers and closes the store.
func (s *appServices) shutdown() {
	if s.statsService != nil {
		s.statsService.StopScheduler()
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
	logger.Info().Msg("Shutdown complete")
}

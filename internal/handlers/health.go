package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/pkg/logger"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// CheckHealth reports whether the store is reachable.
// GET /health
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	dbStatus := "ok"

	if err := models.Ping(h.db); err != nil {
		logger.Error().Err(err).Msg("[Health] Database ping failed")
		status, code = "unhealthy", http.StatusServiceUnavailable
		dbStatus = "unavailable"
	}

	c.JSON(code, gin.H{
		"status":  status,
		"service": "geoconfig",
		"components": gin.H{
			"database": dbStatus,
		},
	})
}

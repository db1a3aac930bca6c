package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/huangang/geoconfig/pkg/logger"
	"github.com/huangang/geoconfig/pkg/response"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// AuthHandler issues admin tokens for the single configured administrator.
type AuthHandler struct {
	cfg *config.AuthConfig
}

func NewAuthHandler(cfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login handles admin login
// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUsername)) == 1
	passOK := utils.CheckPassword(req.Password, h.cfg.AdminPasswordHash)
	if !userOK || !passOK || h.cfg.AdminPasswordHash == "" {
		logger.Warn().Str("username", req.Username).Str("ip", c.ClientIP()).Msg("[Auth] Login failed")
		response.Unauthorized(c, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(h.cfg.AdminUsername, middleware.RoleAdmin, h.cfg.JWTExpireHour)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info().Str("username", req.Username).Msg("[Auth] Admin logged in")
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresIn: h.cfg.JWTExpireHour * 3600})
}

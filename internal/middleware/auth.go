package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/huangang/geoconfig/pkg/response"
)

const (
	ContextUsername = "username"
	ContextRole     = "role"

	RoleAdmin = "admin"
)

var (
	ErrMissingAuthorization = errors.New("authorization header required")
	ErrInvalidAuthorization = errors.New("invalid authorization header format")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

// VerifyBearer validates the bearer token of the request and stores the
// claims in the context.
func VerifyBearer(c *gin.Context) (*utils.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, ErrMissingAuthorization
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, ErrInvalidAuthorization
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	c.Set(ContextUsername, claims.Username)
	c.Set(ContextRole, claims.Role)
	return claims, nil
}

// RequireAdmin authenticates the request and checks the admin role. It
// writes the error response itself and reports whether the caller may
// proceed.
func RequireAdmin(c *gin.Context) bool {
	claims, err := VerifyBearer(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return false
	}
	if claims.Role != RoleAdmin {
		response.Forbidden(c, "admin access required")
		return false
	}
	return true
}

// AuthRequired is a middleware that checks for a valid JWT token
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := VerifyBearer(c); err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		c.Next()
	}
}

// AdminRequired is a middleware that checks for admin role
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists || role != RoleAdmin {
			response.Forbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}

func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}

func GetRole(c *gin.Context) string {
	if role, exists := c.Get(ContextRole); exists {
		return role.(string)
	}
	return ""
}

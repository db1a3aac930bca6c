package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{middleware.APIKeyHeader: testAPIKey}

	w := s.doWith("POST", "/v1/auth/login", map[string]string{"username": "admin", "password": "correct-horse"}, headers)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LoginResponse
	decode(t, w, &resp)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := utils.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, middleware.RoleAdmin, claims.Role)

	w = s.doWith("POST", "/v1/config", map[string]interface{}{"key": "k", "value": 1}, map[string]string{
		middleware.APIKeyHeader: testAPIKey,
		"Authorization":         "Bearer " + resp.Token,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLogin_Rejected(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{middleware.APIKeyHeader: testAPIKey}

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized},
		{"wrong user", map[string]string{"username": "root", "password": "correct-horse"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doWith("POST", "/v1/auth/login", tt.body, headers)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestLogin_NoPasswordHashConfigured(t *testing.T) {
	h := NewAuthHandler(&config.AuthConfig{AdminUsername: "admin", JWTExpireHour: 1})

	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	s := &testServer{router: r}

	w := s.doWith("POST", "/v1/auth/login", map[string]string{"username": "admin", "password": "anything"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/config"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/internal/services"
	"github.com/huangang/geoconfig/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testAPIKey = "test-api-key"

var testDBCounter int64

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handlers-test-secret")
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	token  string
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	counter := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:handlersdb%d?mode=memory&cache=shared", counter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := setupTestDB(t)
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	authCfg := &config.AuthConfig{
		APIKey:            testAPIKey,
		JWTExpireHour:     1,
		AdminUsername:     "admin",
		AdminPasswordHash: hash,
	}

	configHandler := NewConfigHandler(services.NewParamService(db), services.NewOverrideService(db), 300)
	authHandler := NewAuthHandler(authCfg)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/health", NewHealthHandler(db).CheckHealth)

	v1 := r.Group("/v1", middleware.APIKey(authCfg.APIKey))
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/config", configHandler.GetConfig)

	admin := v1.Group("/config", middleware.AuthRequired(), middleware.AdminRequired())
	admin.POST("", configHandler.CreateParam)
	admin.PATCH("/:param", configHandler.UpdateParam)
	admin.DELETE("/:param", configHandler.DeleteParam)
	admin.GET("/:param/overrides", configHandler.ListOverrides)
	admin.POST("/:param/overrides", configHandler.CreateOverride)
	admin.PATCH("/:param/overrides/:country", configHandler.UpdateOverride)
	admin.DELETE("/:param/overrides/:country", configHandler.DeleteOverride)

	token, err := utils.GenerateToken("admin", middleware.RoleAdmin, 1)
	require.NoError(t, err)

	return &testServer{router: r, db: db, token: token}
}

// do sends an admin request with the API key and bearer token.
func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return s.doWith(method, path, body, map[string]string{
		middleware.APIKeyHeader: testAPIKey,
		"Authorization":         "Bearer " + s.token,
	})
}

func (s *testServer) doWith(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createParam(t *testing.T, key string, value interface{}) string {
	t.Helper()
	w := s.do("POST", "/v1/config", map[string]interface{}{"key": key, "value": value})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

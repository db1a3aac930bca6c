package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func corsRouter(origins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(origins))
	router.GET("/v1/config", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.PATCH("/v1/config/:key", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/config", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/config", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Access-Control-Allow-Origin %q", got)
	}
}

func TestCORS_AllOriginsWhenUnconfigured(t *testing.T) {
	router := corsRouter(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/config", nil)
	req.Header.Set("Origin", "http://anywhere.example")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, expected *", got)
	}
}

func TestCORS_PreflightAllowsAdminHeaders(t *testing.T) {
	router := corsRouter([]string{"http://localhost:5173"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/v1/config/theme", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	req.Header.Set("Access-Control-Request-Headers", "x-api-key, Authorization, Content-Type")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent && w.Code != http.StatusOK {
		t.Errorf("preflight request should return 200 or 204, got %d", w.Code)
	}

	methods := w.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(methods, "PATCH") || !strings.Contains(methods, "DELETE") {
		t.Errorf("Access-Control-Allow-Methods = %q", methods)
	}
	headers := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"x-api-key", "authorization"} {
		if !strings.Contains(headers, h) {
			t.Errorf("Access-Control-Allow-Headers %q is missing %s", headers, h)
		}
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetOutput(buf, zerolog.DebugLevel)
	t.Cleanup(func() { Init("info") })
	return buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("failed to parse log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestGinLogger(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(RequestIDKey, "req-1")
		c.Next()
	})
	r.Use(GinLogger())
	r.GET("/v1/config", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/config?country=us", nil)
	r.ServeHTTP(w, req)

	entry := lastEntry(t, buf)
	if entry["level"] != "warn" {
		t.Errorf("expected warn level for 404, got %v", entry["level"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("expected request_id req-1, got %v", entry["request_id"])
	}
	if entry["query"] != "country=us" {
		t.Errorf("expected query to be logged, got %v", entry["query"])
	}
	if entry["status"] != float64(404) {
		t.Errorf("expected status 404, got %v", entry["status"])
	}
}

func TestGinRecovery(t *testing.T) {
	buf := captureLogs(t)

	r := gin.New()
	r.Use(GinRecovery())
	r.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/boom", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	entry := lastEntry(t, buf)
	if entry["panic"] != "boom" {
		t.Errorf("expected panic value to be logged, got %v", entry["panic"])
	}
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	Init("nonsense")
	if got := Get().GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("expected info level, got %s", got)
	}
}

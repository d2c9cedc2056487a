package v1

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newMiddlewareRouter(log *logrus.Logger, origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), RequestLogger(log), CORS(origins))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return router
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	router := newMiddlewareRouter(log, nil)

	w := makeRequest(router, "GET", "/ping", nil)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	w = makeRequest(router, "GET", "/ping", nil, map[string]string{RequestIDHeader: "call-42"})
	assert.Equal(t, "call-42", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger_WritesEntry(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	router := newMiddlewareRouter(log, nil)

	makeRequest(router, "GET", "/ping", nil, map[string]string{RequestIDHeader: "call-7"})

	assert.Contains(t, buf.String(), "request_id=call-7")
	assert.Contains(t, buf.String(), "path=/ping")
	assert.Contains(t, buf.String(), "status=200")
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	router := newMiddlewareRouter(log, []string{"https://console.example.org"})

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://console.example.org")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://console.example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/remotehub/internal/shared/id"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func TestCORS(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(DefaultCORSConfig()))
	router.GET("/api/sessions", okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "bridge page on a session port",
			method:     "GET",
			origin:     "http://192.168.1.20:7796",
			wantStatus: http.StatusOK,
			wantOrigin: "http://192.168.1.20:7796",
		},
		{
			name:       "preflight OPTIONS request",
			method:     "OPTIONS",
			origin:     "https://hub.local:7771",
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://hub.local:7771",
		},
		{
			name:       "no origin header",
			method:     "GET",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/sessions", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.method == "OPTIONS" {
				req.Header.Set("Access-Control-Request-Method", "POST")
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSWithFixedOrigins(t *testing.T) {
	router := setupTestRouter()
	router.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://example.com"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       time.Hour,
	}))
	router.GET("/test", okHandler)

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 2, Burst: 2}))
	router.GET("/test", okHandler)

	// First 2 requests should succeed (burst capacity)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "192.168.1.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "Request %d should succeed", i+1)
	}

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"rate limit exceeded"}`, w.Body.String())
}

func TestRateLimitDifferentClients(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	router.GET("/test", okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("192.168.1.1:1234"))
	assert.Equal(t, http.StatusOK, send("192.168.1.2:1234"))
	assert.Equal(t, http.StatusTooManyRequests, send("192.168.1.1:1234"))
}

func TestLimiterStoreEvictsIdleClients(t *testing.T) {
	store := newLimiterStore(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTTL: time.Minute})
	clock := time.Unix(1700000000, 0)
	store.now = func() time.Time { return clock }

	assert.True(t, store.allow("10.0.0.1"))
	assert.True(t, store.allow("10.0.0.2"))
	assert.Equal(t, 2, store.size())

	clock = clock.Add(30 * time.Second)
	assert.True(t, store.allow("10.0.0.2"))

	// the next sweep drops 10.0.0.1 and keeps 10.0.0.2
	clock = clock.Add(31 * time.Second)
	assert.True(t, store.allow("10.0.0.3"))
	assert.Equal(t, 2, store.size())
}

func TestDefaultRateLimitConfig(t *testing.T) {
	cfg := DefaultRateLimitConfig()

	assert.Equal(t, 20, cfg.RequestsPerSecond)
	assert.Equal(t, 40, cfg.Burst)
	assert.Equal(t, 5*time.Minute, cfg.IdleTTL)
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	generated := w.Header().Get(RequestIDHeader)
	assert.True(t, strings.HasPrefix(generated, "req_"))
	assert.Equal(t, generated, w.Body.String())

	// a well-formed client id is kept
	forwarded := id.NewRequestID().String()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, forwarded)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, forwarded, w.Header().Get(RequestIDHeader))

	// anything else is replaced
	req = httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(RequestIDHeader, "'; drop table")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "'; drop table", w.Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	router := setupTestRouter()
	router.Use(RequestID(), AccessLog(zap.New(core), "/api/sessions"))
	router.GET("/api/sessions", okHandler)
	router.GET("/stop/:name", okHandler)
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/api/sessions", "/stop/alpha", "/boom", "/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 4)

	levels := make(map[string]zapcore.Level)
	for _, e := range entries {
		levels[e.ContextMap()["path"].(string)] = e.Level
		assert.NotEmpty(t, e.ContextMap()["request_id"])
	}
	assert.Equal(t, zapcore.DebugLevel, levels["/api/sessions"])
	assert.Equal(t, zapcore.InfoLevel, levels["/stop/alpha"])
	assert.Equal(t, zapcore.ErrorLevel, levels["/boom"])
	assert.Equal(t, zapcore.WarnLevel, levels["/missing"])
}

func TestAccessLogRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	router := setupTestRouter()
	router.Use(AccessLog(zap.New(core), "/api/sessions"))
	router.GET("/api/sessions", okHandler)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/sessions", nil))
	assert.Zero(t, logs.Len())
}

func BenchmarkRateLimit(b *testing.B) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1 << 20, Burst: 1 << 20}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.1:1234"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

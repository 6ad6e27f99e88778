package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.SessionStarted("created")
	a.SessionStarted("created")
	b.SessionStarted("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.SessionStarts.WithLabelValues("created")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SessionStarts.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.SessionStarts.WithLabelValues("failed")))
}

func TestRecorders(t *testing.T) {
	m := NewMetrics()

	m.SessionsActive(3)
	m.SessionStopped()
	m.CaptureAttempted("captured")
	m.ProbeObserved("lsof", "error")
	m.ProbeObserved("ss", "ok")
	m.ReadinessWait(200*time.Millisecond, true)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionStops))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Captures.WithLabelValues("captured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeStrategy.WithLabelValues("lsof", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ReadinessDuration))
	assert.Equal(t, int64(3), m.Snapshot().ActiveSessions)
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()
	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/stop/:name", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, name := range []string{"alpha", "beta"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stop/"+name, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/stop/:name", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.TotalRequests)
	assert.Equal(t, int64(1), snap.TotalErrors)
}

func TestHandlerExposesHubMetrics(t *testing.T) {
	m := NewMetrics()
	m.SessionStarted("created")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `hub_session_starts_total{result="created"} 1`))
	assert.Contains(t, body, "hub_uptime_seconds")
	assert.Contains(t, body, "go_goroutines")
}

func TestTimer(t *testing.T) {
	m := NewMetrics()
	NewTimer(m, "start").Stop("success")
	NewTimer(nil, "start").Stop("success")

	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

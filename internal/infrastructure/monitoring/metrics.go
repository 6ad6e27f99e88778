package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Session metrics
	ActiveSessions    prometheus.Gauge
	SessionStarts     *prometheus.CounterVec
	SessionStops      prometheus.Counter
	ReadinessDuration *prometheus.HistogramVec
	Captures          *prometheus.CounterVec

	// Probe metrics
	ProbeStrategy *prometheus.CounterVec

	// Operation metrics
	OperationDuration *prometheus.HistogramVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON health endpoint
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ActiveSessions int64   `json:"active_sessions"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a new metrics collector on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Session metrics
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "hub_sessions_active",
				Help: "Number of live managed sessions at the last listing",
			},
		),
		SessionStarts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_session_starts_total",
				Help: "Session start attempts by result",
			},
			[]string{"result"},
		),
		SessionStops: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "hub_session_stops_total",
				Help: "Total number of sessions stopped",
			},
		),
		ReadinessDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_readiness_wait_seconds",
				Help:    "Time spent waiting for a bridge to bind its port",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 3, 5},
			},
			[]string{"ready"},
		),
		Captures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_captures_total",
				Help: "Capture attempts by result",
			},
			[]string{"result"},
		),

		// Probe metrics
		ProbeStrategy: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hub_probe_strategy_total",
				Help: "Port probe strategy outcomes",
			},
			[]string{"strategy", "result"},
		),

		// Operation metrics
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hub_operation_duration_seconds",
				Help:    "Control-plane operation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation", "status"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "hub_uptime_seconds",
			Help: "Control-plane uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordOperation records the duration of a control-plane operation
func (m *Metrics) RecordOperation(operation, status string, duration time.Duration) {
	m.OperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// SessionStarted implements session.Recorder
func (m *Metrics) SessionStarted(result string) {
	m.SessionStarts.WithLabelValues(result).Inc()
}

// SessionStopped implements session.Recorder
func (m *Metrics) SessionStopped() {
	m.SessionStops.Inc()
}

// SessionsActive implements session.Recorder
func (m *Metrics) SessionsActive(count int) {
	m.ActiveSessions.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// ReadinessWait implements session.Recorder
func (m *Metrics) ReadinessWait(d time.Duration, ready bool) {
	m.ReadinessDuration.WithLabelValues(strconv.FormatBool(ready)).Observe(d.Seconds())
}

// CaptureAttempted implements capture.Recorder
func (m *Metrics) CaptureAttempted(result string) {
	m.Captures.WithLabelValues(result).Inc()
}

// ProbeObserved records one port probe strategy outcome
func (m *Metrics) ProbeObserved(strategy, result string) {
	m.ProbeStrategy.WithLabelValues(strategy, result).Inc()
}

// Snapshot returns current values for the health endpoint
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

/*
Package monitoring provides Prometheus metrics for the control plane.

# Overview

All collectors live on a private registry owned by Metrics, so several
instances (one per test, say) can coexist without duplicate registration
panics. The registry also carries the Go runtime and process collectors.

# Metrics

  - hub_http_requests_total, hub_http_request_duration_seconds, hub_http_response_size_bytes
  - hub_sessions_active
  - hub_session_starts_total{result}, hub_session_stops_total
  - hub_captures_total{result}
  - hub_probe_strategy_total{strategy,result}
  - hub_readiness_wait_seconds{ready}
  - hub_operation_duration_seconds{operation,status}
  - hub_uptime_seconds

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "start")
	// ... perform operation ...
	timer.Stop("success")
*/
package monitoring

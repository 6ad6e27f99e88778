// Package middleware provides the HTTP middleware stack of the hub's
// control plane.
//
// Middleware stack includes:
//   - CORS: bridge pages served from session ports call back into the hub
//   - RateLimit: per-IP token bucket with idle-client eviction
//   - RequestID: ULID request ids echoed in X-Request-ID
//   - AccessLog: one structured zap line per request
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.AccessLog(logger, "/health"))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware

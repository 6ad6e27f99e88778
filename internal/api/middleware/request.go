package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/remotehub/internal/shared/id"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID assigns every request an id, reusing a well-formed one sent by
// the client, and echoes it in the response headers.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID, ok := id.ParseRequestID(c.GetHeader(RequestIDHeader))
		if !ok {
			reqID = id.NewRequestID()
		}
		c.Set(requestIDKey, reqID.String())
		c.Header(RequestIDHeader, reqID.String())
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// AccessLog logs one line per request. Routes listed in quiet are polled
// continuously by dashboards and log at debug level unless they fail.
func AccessLog(logger *zap.Logger, quiet ...string) gin.HandlerFunc {
	quietRoutes := make(map[string]bool, len(quiet))
	for _, route := range quiet {
		quietRoutes[route] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()

		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		case quietRoutes[route]:
			level = zapcore.DebugLevel
		}

		ce := logger.Check(level, "HTTP request")
		if ce == nil {
			return
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		ce.Write(fields...)
	}
}

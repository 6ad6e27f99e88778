package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	// AllowOrigins lists permitted origins. Empty reflects any origin,
	// which is what bridge pages on arbitrary session ports need.
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       time.Duration
}

// DefaultCORSConfig returns the configuration used by the hub.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Accept",
			"Origin",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:  cfg.AllowMethods,
		AllowHeaders:  cfg.AllowHeaders,
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        cfg.MaxAge,
	}
	if len(cfg.AllowOrigins) > 0 {
		c.AllowOrigins = cfg.AllowOrigins
	} else {
		c.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(c)
}

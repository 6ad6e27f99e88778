package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	// IdleTTL is how long a client may stay quiet before its limiter is
	// dropped.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns the hub's rate limit configuration.
// Dashboards poll sessions and readiness several times a second, so the
// burst is sized for a handful of open tabs.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		IdleTTL:           5 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore tracks one limiter per client key.
type limiterStore struct {
	mu        sync.Mutex
	cfg       RateLimitConfig
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &limiterStore{
		cfg:     cfg,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.cfg.IdleTTL {
		s.sweep(now)
	}
	cl, ok := s.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), s.cfg.Burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = now
	s.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than IdleTTL. Caller holds mu.
func (s *limiterStore) sweep(now time.Time) {
	for key, cl := range s.clients {
		if now.Sub(cl.lastSeen) > s.cfg.IdleTTL {
			delete(s.clients, key)
		}
	}
	s.lastSweep = now
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit creates a per-IP rate limiting middleware.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	return rateLimit(newLimiterStore(cfg))
}

func rateLimit(store *limiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

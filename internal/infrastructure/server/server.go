package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	handlers "github.com/GriffinCanCode/remotehub/internal/api/http"
	"github.com/GriffinCanCode/remotehub/internal/api/middleware"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/config"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/logging"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
	"github.com/GriffinCanCode/remotehub/internal/shared/paths"
)

const shutdownTimeout = 10 * time.Second

// quietRoutes are polled by dashboards and bridge pages.
var quietRoutes = []string{
	"/health",
	"/metrics",
	"/api/sessions",
	"/api/capturable",
	"/api/ttyd-ready/:name",
}

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	services *Services
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
	install  paths.Install
	tls      bool

	http *http.Server
}

// Option customizes NewServer.
type Option func(*serverOptions)

type serverOptions struct {
	runner runner.Runner
	logger *logging.Logger
}

// WithRunner replaces the command runner used for tmux, ttyd and probes.
func WithRunner(r runner.Runner) Option {
	return func(o *serverOptions) { o.runner = r }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l *logging.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	o := serverOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	install := cfg.Install()
	if err := os.MkdirAll(install.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create install directory: %w", err)
	}

	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			OutputPaths: []string{"stdout", install.Log()},
			ErrorPaths:  []string{install.ErrorLog()},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	if o.runner == nil {
		o.runner = runner.New()
	}

	tlsEnabled := install.HasTLS()
	logger.Info("Initializing Claude Remote Hub",
		zap.Int("port", cfg.Server.Port),
		zap.Int("session_base_port", cfg.Sessions.BasePort),
		zap.Int("session_port_range", cfg.Sessions.PortRange),
		zap.String("dev_root", cfg.Paths.DevRoot),
		zap.Bool("tls", tlsEnabled),
	)

	metrics := monitoring.NewMetrics()

	services, err := NewServices(cfg, o.runner, metrics, logger.Logger)
	if err != nil {
		return nil, err
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	// ClientIP is the socket peer; forwarded headers are never trusted.
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to configure trusted proxies: %w", err)
	}

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Handler panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("http"), quietRoutes...))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	h := handlers.NewHandlers(handlers.Deps{
		Sessions:   services.Launcher,
		Registry:   services.Registry,
		Folders:    services.Browser,
		Discoverer: services.Discoverer,
		Capturer:   services.Capturer,
		Metrics:    metrics,
		Install:    install,
		TLS:        tlsEnabled,
		Logger:     logger.Named("api"),
	})
	h.Register(router)

	srv := &Server{
		router:   router,
		services: services,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
		install:  install,
		tls:      tlsEnabled,
	}
	srv.http = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger.Named("http-server")),
	}
	if tlsEnabled {
		srv.http.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	logger.Info("Server initialized successfully")
	return srv, nil
}

// Handler returns the router behind gzip compression.
func (s *Server) Handler() http.Handler {
	return gzhttp.GzipHandler(s.router)
}

// Services returns the wired domain services.
func (s *Server) Services() *Services {
	return s.services
}

// Run listens on the configured address and serves until Close. At most
// MaxConnections connections are served at once.
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Close.
func (s *Server) Serve(ln net.Listener) error {
	ln = netutil.LimitListener(ln, s.config.Server.MaxConnections)

	scheme := "http"
	if s.tls {
		scheme = "https"
	}
	s.logger.Info("Starting HTTP server",
		zap.String("addr", ln.Addr().String()),
		zap.String("scheme", scheme),
		zap.Int("max_connections", s.config.Server.MaxConnections),
	)

	if s.tls {
		err := s.http.ServeTLS(ln, s.install.Cert(), s.install.Key())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
	err := s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close gracefully shuts down the server and stops the session bridges.
// Multiplexer targets keep running.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("failed to shut down http server: %w", err))
	}

	if err := s.services.Launcher.StopBridges(ctx); err != nil {
		s.logger.Warn("Some bridges could not be stopped", zap.Error(err))
		errs = append(errs, err)
	}

	// Sync logger before exit
	_ = s.logger.Close()

	return errors.Join(errs...)
}

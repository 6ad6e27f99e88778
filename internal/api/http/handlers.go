package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/domain/capture"
	"github.com/GriffinCanCode/remotehub/internal/domain/folders"
	"github.com/GriffinCanCode/remotehub/internal/domain/ports"
	"github.com/GriffinCanCode/remotehub/internal/domain/session"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/remotehub/internal/shared/paths"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

// Sessions starts, stops and drives managed sessions.
type Sessions interface {
	Start(ctx context.Context, name string, opts session.StartOptions) (*session.Session, error)
	Stop(ctx context.Context, name string) error
	Readiness(ctx context.Context, name string) (session.Readiness, error)
	SendKeys(ctx context.Context, name, key string) error
	SendText(ctx context.Context, name, text string) error
	Scroll(ctx context.Context, name, direction string) error
}

// SessionLister snapshots the managed sessions.
type SessionLister interface {
	List(ctx context.Context) ([]session.Session, error)
}

// FolderBrowser resolves and lists directories below the browsing root.
type FolderBrowser interface {
	Resolve(path string) (string, error)
	List(ctx context.Context, path string) (*folders.Listing, error)
}

// ProcessLister lists capturable CLI processes.
type ProcessLister interface {
	List(ctx context.Context) ([]capture.Process, error)
}

// ProcessCapturer forks a running CLI process into a managed session.
type ProcessCapturer interface {
	Capture(ctx context.Context, pid int) (*session.Session, error)
}

// Deps are the services behind the handlers.
type Deps struct {
	Sessions   Sessions
	Registry   SessionLister
	Folders    FolderBrowser
	Discoverer ProcessLister
	Capturer   ProcessCapturer
	Metrics    *monitoring.Metrics
	Install    paths.Install
	// TLS makes session URLs use https, matching the bridges.
	TLS    bool
	Logger *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions   Sessions
	registry   SessionLister
	folders    FolderBrowser
	discoverer ProcessLister
	capturer   ProcessCapturer
	metrics    *monitoring.Metrics
	track      *HandlerMetrics
	install    paths.Install
	tls        bool
	logger     *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sessions:   d.Sessions,
		registry:   d.Registry,
		folders:    d.Folders,
		discoverer: d.Discoverer,
		capturer:   d.Capturer,
		metrics:    d.Metrics,
		track:      NewHandlerMetrics(d.Metrics),
		install:    d.Install,
		tls:        d.TLS,
		logger:     logger,
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/metrics", h.Metrics)
	r.GET("/cert", h.Cert)
	r.GET("/icon.png", h.Icon)

	r.GET("/start/:name", h.StartSession)
	r.GET("/stop/:name", h.StopSession)
	r.GET("/capture", h.Capture)

	api := r.Group("/api")
	{
		api.GET("/sessions", h.ListSessions)
		api.GET("/ttyd-ready/:name", h.Readiness)
		api.GET("/folders", h.ListFolders)
		api.GET("/capturable", h.ListCapturable)
		api.POST("/send-keys/:name", h.SendKeys)
		api.POST("/send-text/:name", h.SendText)
		api.POST("/scroll/:name", h.Scroll)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, utils.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrInvalidName),
		errors.Is(err, session.ErrInvalidDirectory),
		errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, folders.ErrPathTraversal),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, capture.ErrNotFound),
		errors.Is(err, folders.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, capture.ErrNoConversation):
		return http.StatusConflict
	case errors.Is(err, ports.ErrExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// fail answers err with its mapped status. Server-side failures are logged;
// rejected input is not.
func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func ok(c *gin.Context, extra gin.H) {
	body := gin.H{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/domain/capture"
	"github.com/GriffinCanCode/remotehub/internal/domain/conversation"
	"github.com/GriffinCanCode/remotehub/internal/domain/folders"
	"github.com/GriffinCanCode/remotehub/internal/domain/ports"
	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
	"github.com/GriffinCanCode/remotehub/internal/domain/session"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/config"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
	"github.com/GriffinCanCode/remotehub/internal/providers/tmux"
	"github.com/GriffinCanCode/remotehub/internal/providers/ttyd"
	"github.com/GriffinCanCode/remotehub/internal/shared/paths"
)

// Services is the domain object graph shared by the HTTP server and the
// stop/status commands.
type Services struct {
	Probe      *probe.System
	Mux        *tmux.Client
	Bridge     *ttyd.Bridge
	Registry   *session.Registry
	Launcher   *session.Launcher
	Discoverer *capture.Discoverer
	Capturer   *capture.Capturer
	Browser    *folders.Browser

	hubPort int
}

// NewServices wires the domain over r. metrics may be nil.
func NewServices(cfg *config.Config, r runner.Runner, metrics *monitoring.Metrics, logger *zap.Logger) (*Services, error) {
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	alloc, err := ports.New(cfg.Sessions.BasePort, cfg.Sessions.PortRange)
	if err != nil {
		return nil, fmt.Errorf("failed to create port allocator: %w", err)
	}

	browser, err := folders.NewBrowser(cfg.Paths.DevRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid browsing root: %w", err)
	}

	p := probe.New(r, logger.Named("probe"), probe.WithObserver(metrics.ProbeObserved))
	mux := tmux.New(r, cfg.Binaries.Tmux, logger.Named("tmux"))

	install := cfg.Install()
	bridgeOpts := ttyd.Options{
		Bin:       cfg.Binaries.Ttyd,
		FontSize:  cfg.Bridge.FontSize,
		IndexFile: paths.Optional(install.Index()),
	}
	if install.HasTLS() {
		bridgeOpts.CertFile = install.Cert()
		bridgeOpts.KeyFile = install.Key()
	}
	bridge := ttyd.New(r, p, bridgeOpts, logger.Named("ttyd"))

	registry := session.NewRegistry(mux, p, alloc, metrics)
	launcher := session.NewLauncher(registry, bridge, session.Config{
		ClaudeBin:     cfg.Binaries.Claude,
		BridgeBin:     cfg.Binaries.Ttyd,
		ReadyTimeout:  cfg.Sessions.ReadyTimeout,
		ReadyInterval: cfg.Sessions.ReadyInterval,
		MaxPasteBytes: cfg.Sessions.MaxPasteBytes,
	}, logger.Named("session"))

	resolver := conversation.NewResolver(cfg.Paths.StateDir)
	discoverer := capture.NewDiscoverer(p, mux, resolver, cfg.Binaries.Claude, logger.Named("capture"))
	capturer := capture.NewCapturer(discoverer, launcher, registry, cfg.Binaries.Claude, metrics, logger.Named("capture"))

	return &Services{
		Probe:      p,
		Mux:        mux,
		Bridge:     bridge,
		Registry:   registry,
		Launcher:   launcher,
		Discoverer: discoverer,
		Capturer:   capturer,
		Browser:    browser,
		hubPort:    cfg.Server.Port,
	}, nil
}

// HubPID returns the pid listening on the control-plane port, or 0 when
// the hub is not running.
func (s *Services) HubPID(ctx context.Context) (int, error) {
	pids, err := s.Probe.PIDsOnPort(ctx, s.hubPort)
	if err != nil {
		return 0, err
	}
	if len(pids) == 0 {
		return 0, nil
	}
	return pids[0], nil
}

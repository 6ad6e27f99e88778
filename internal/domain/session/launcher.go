package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

// Start results reported to the Recorder.
const (
	ResultCreated = "created"
	ResultResumed = "resumed"
	ResultFailed  = "failed"
)

// Config holds launcher settings.
type Config struct {
	// ClaudeBin is the CLI started in new targets.
	ClaudeBin string
	// SkipPermissionsFlag is appended when StartOptions.SkipPermissions is set.
	SkipPermissionsFlag string
	// BridgeBin names the bridge binary, used to recognize bridges on a port.
	BridgeBin     string
	ReadyTimeout  time.Duration
	ReadyInterval time.Duration
	MaxPasteBytes int
}

// DefaultConfig returns the launcher defaults.
func DefaultConfig() Config {
	return Config{
		ClaudeBin:           "claude",
		SkipPermissionsFlag: "--dangerously-skip-permissions",
		BridgeBin:           "ttyd",
		ReadyTimeout:        3 * time.Second,
		ReadyInterval:       DefaultReadyInterval,
		MaxPasteBytes:       utils.DefaultMaxPasteBytes,
	}
}

// Launcher starts and stops sessions and relays input to them.
type Launcher struct {
	registry *Registry
	bridge   supervisor.Supervisor
	prober   *Prober
	cfg      Config
	logger   *zap.Logger
}

// NewLauncher creates a launcher over registry's multiplexer and probe.
func NewLauncher(registry *Registry, bridge supervisor.Supervisor, cfg Config, logger *zap.Logger) *Launcher {
	def := DefaultConfig()
	if cfg.ClaudeBin == "" {
		cfg.ClaudeBin = def.ClaudeBin
	}
	if cfg.SkipPermissionsFlag == "" {
		cfg.SkipPermissionsFlag = def.SkipPermissionsFlag
	}
	if cfg.BridgeBin == "" {
		cfg.BridgeBin = def.BridgeBin
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = def.ReadyTimeout
	}
	if cfg.MaxPasteBytes <= 0 {
		cfg.MaxPasteBytes = def.MaxPasteBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		registry: registry,
		bridge:   bridge,
		prober:   NewProber(registry.probe, cfg.ReadyInterval),
		cfg:      cfg,
		logger:   logger,
	}
}

// Registry returns the registry the launcher works against.
func (l *Launcher) Registry() *Registry {
	return l.registry
}

// Command returns the CLI command line for a new target.
func (l *Launcher) Command(skipPermissions bool) []string {
	cmd := []string{l.cfg.ClaudeBin}
	if skipPermissions {
		cmd = append(cmd, l.cfg.SkipPermissionsFlag)
	}
	return cmd
}

// Start brings the session up, creating only what is missing: an existing
// target is resumed, and a bridge already attached to the session keeps its
// port even when its target was killed behind our back. A port held by
// anything else yields StatusDegraded. A bridge that is not ready within the
// readiness timeout yields StatusStarting, not an error.
func (l *Launcher) Start(ctx context.Context, name string, opts StartOptions) (*Session, error) {
	if err := utils.ValidateSessionName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if opts.Dir != "" {
		info, err := os.Stat(opts.Dir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDirectory, opts.Dir)
		}
	}

	targets, err := l.registry.Targets(ctx)
	if err != nil {
		return nil, err
	}

	var (
		target supervisor.Target
		exists bool
	)
	for _, t := range targets {
		if t.Name == name {
			target, exists = t, true
			break
		}
	}

	result := ResultResumed
	port := 0
	if exists {
		port = l.registry.PortOf(target)
	} else {
		result = ResultCreated
		port, err = l.registry.alloc.Assign(name, l.registry.Claimed(targets), func(p int) bool {
			owner, _, _ := l.ownerOf(ctx, name, p)
			return owner == ownerOther
		})
		if err != nil {
			l.registry.metrics.SessionStarted(ResultFailed)
			return nil, err
		}

		command := opts.Command
		if len(command) == 0 {
			command = l.Command(opts.SkipPermissions)
		}
		spec := supervisor.Spec{Name: name, Dir: opts.Dir, Port: port, Command: command}
		if _, err := l.registry.mux.Start(ctx, spec); err != nil {
			l.registry.metrics.SessionStarted(ResultFailed)
			return nil, fmt.Errorf("%w: %v", ErrSpawnFailure, err)
		}
		target = supervisor.Target{Name: name, Port: port, Path: opts.Dir, Windows: 1}
	}

	owner, bridgePID, err := l.ownerOf(ctx, name, port)
	if err != nil {
		l.registry.metrics.SessionStarted(ResultFailed)
		return nil, fmt.Errorf("failed to probe port %d: %w", port, err)
	}

	switch owner {
	case ownerOther:
		l.registry.metrics.SessionStarted(result)
		l.logger.Warn("Session port held by another process",
			zap.String("session", name),
			zap.Int("port", port))
		s := l.registry.snapshot(target, port, false)
		return &s, nil
	case ownerNone:
		h, err := l.bridge.Start(ctx, supervisor.Spec{
			Name:    name,
			Port:    port,
			Command: l.registry.mux.AttachCommand(name),
		})
		if err != nil {
			l.registry.metrics.SessionStarted(ResultFailed)
			return nil, fmt.Errorf("%w: %v", ErrSpawnFailure, err)
		}
		bridgePID = h.PID
	}
	bound := owner == ownerSelf

	started := time.Now()
	ready := bound || l.prober.WaitReady(ctx, port, l.cfg.ReadyTimeout)
	if !bound {
		l.registry.metrics.ReadinessWait(time.Since(started), ready)
	}
	l.registry.metrics.SessionStarted(result)

	s := l.registry.snapshot(target, port, ready)
	s.BridgePID = bridgePID
	if !ready {
		s.Status = StatusStarting
	}

	l.logger.Info("Session started",
		zap.String("session", name),
		zap.Int("port", port),
		zap.String("result", result),
		zap.Bool("ready", ready))
	return &s, nil
}

// Stop tears the session down: bridges first, then the target. Besides the
// recorded port it stops bridges still attached to name elsewhere, such as
// on its home port or, once the target is gone, anywhere in the range.
// Anything already gone is skipped, so stopping a stopped session succeeds.
func (l *Launcher) Stop(ctx context.Context, name string) error {
	if err := utils.ValidateSessionName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	alloc := l.registry.alloc
	home := alloc.PortFor(name)
	port := home
	target, exists, err := l.registry.Find(ctx, name)
	if err != nil {
		l.logger.Warn("Target lookup failed during stop", zap.String("session", name), zap.Error(err))
	} else if exists {
		port = l.registry.PortOf(target)
	}

	candidates := map[int]bool{home: true}
	if !exists {
		bound, err := l.registry.probe.ListeningPorts(ctx, alloc.Base(), alloc.Base()+alloc.Size()-1)
		if err != nil {
			l.logger.Debug("Port scan failed during stop", zap.String("session", name), zap.Error(err))
		}
		for p := range bound {
			candidates[p] = true
		}
	}
	delete(candidates, port)

	h := supervisor.Handle{Name: name, Port: port}
	var errs []error
	if err := l.bridge.Stop(ctx, h); err != nil {
		errs = append(errs, err)
	}
	for p := range candidates {
		if owner, _, _ := l.ownerOf(ctx, name, p); owner != ownerSelf {
			continue
		}
		if err := l.bridge.Stop(ctx, supervisor.Handle{Name: name, Port: p}); err != nil {
			errs = append(errs, err)
		}
	}
	if err := l.registry.mux.Stop(ctx, h); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		l.logger.Warn("Session stop incomplete", zap.String("session", name), zap.Error(err))
		return err
	}

	if exists {
		l.registry.metrics.SessionStopped()
		l.logger.Info("Session stopped", zap.String("session", name), zap.Int("port", port))
	}
	return nil
}

// Readiness checks once whether the session's bridge is bound.
func (l *Launcher) Readiness(ctx context.Context, name string) (Readiness, error) {
	if err := utils.ValidateSessionName(name); err != nil {
		return Readiness{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	target, exists, err := l.registry.Find(ctx, name)
	if err != nil {
		return Readiness{}, err
	}
	if !exists {
		return Readiness{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	port := l.registry.PortOf(target)
	bound, err := l.registry.probe.IsPortBound(ctx, port)
	if err != nil {
		return Readiness{}, fmt.Errorf("failed to probe port %d: %w", port, err)
	}
	return Readiness{Ready: bound, Port: port}, nil
}

// StopBridges stops the bridges of every managed session and any ttyd left
// listening in the session port range. Targets are kept, so sessions resume
// on the next Start.
func (l *Launcher) StopBridges(ctx context.Context) error {
	alloc := l.registry.alloc
	portNames := make(map[int]string)

	targets, err := l.registry.Targets(ctx)
	if err != nil {
		l.logger.Warn("Target lookup failed during bridge shutdown", zap.Error(err))
	}
	for _, t := range targets {
		portNames[l.registry.PortOf(t)] = t.Name
	}

	bound, err := l.registry.probe.ListeningPorts(ctx, alloc.Base(), alloc.Base()+alloc.Size()-1)
	if err != nil {
		l.logger.Warn("Port scan failed during bridge shutdown", zap.Error(err))
	}
	for port := range bound {
		if _, ok := portNames[port]; !ok {
			portNames[port] = ""
		}
	}

	var errs []error
	for port, name := range portNames {
		if err := l.bridge.Stop(ctx, supervisor.Handle{Name: name, Port: port}); err != nil {
			errs = append(errs, err)
		}
	}
	l.logger.Info("Bridges stopped", zap.Int("count", len(portNames)))
	return errors.Join(errs...)
}

package ttyd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
)

const (
	// DefaultTitle is the fixed browser tab title.
	DefaultTitle = "Claude Remote Hub"

	theme        = `{"background":"#0f0f1a","foreground":"#e8e8f0","cursor":"#7c83ff"}`
	pingInterval = "5"
)

// ErrNoCommand is returned when Start is called without an attach command.
var ErrNoCommand = errors.New("no attach command for bridge")

// Options configures the bridge command line. IndexFile, CertFile and
// KeyFile are only passed when non-empty; TLS needs both CertFile and KeyFile.
type Options struct {
	Bin       string
	FontSize  int
	Title     string
	IndexFile string
	CertFile  string
	KeyFile   string
}

// Bridge starts and stops ttyd processes.
type Bridge struct {
	runner runner.Runner
	probe  probe.Probe
	opts   Options
	kill   func(pid int) error
	logger *zap.Logger
}

var _ supervisor.Supervisor = (*Bridge)(nil)

// New creates a bridge supervisor.
func New(r runner.Runner, p probe.Probe, opts Options, logger *zap.Logger) *Bridge {
	if opts.Bin == "" {
		opts.Bin = "ttyd"
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{runner: r, probe: p, opts: opts, kill: terminate, logger: logger}
}

// TLS reports whether bridges are served over HTTPS.
func (b *Bridge) TLS() bool {
	return b.opts.CertFile != "" && b.opts.KeyFile != ""
}

// Args builds the ttyd argv (without the binary) for spec.
func (b *Bridge) Args(spec supervisor.Spec) []string {
	args := []string{
		"-W",
		"-p", strconv.Itoa(spec.Port),
		"--ping-interval", pingInterval,
	}
	if b.opts.FontSize > 0 {
		args = append(args, "-t", "fontSize="+strconv.Itoa(b.opts.FontSize))
	}
	args = append(args,
		"-t", "theme="+theme,
		"-t", "titleFixed="+b.opts.Title,
	)
	if b.opts.IndexFile != "" {
		args = append(args, "-I", b.opts.IndexFile)
	}
	if b.TLS() {
		args = append(args, "-S", "-C", b.opts.CertFile, "-K", b.opts.KeyFile)
	}
	return append(args, spec.Command...)
}

// Start spawns a detached bridge serving spec.Command on spec.Port.
func (b *Bridge) Start(ctx context.Context, spec supervisor.Spec) (supervisor.Handle, error) {
	h := supervisor.Handle{Name: spec.Name, Port: spec.Port}
	if len(spec.Command) == 0 {
		return h, ErrNoCommand
	}

	pid, err := b.runner.Spawn(b.opts.Bin, b.Args(spec)...)
	if err != nil {
		return h, fmt.Errorf("failed to spawn bridge on port %d: %w", spec.Port, err)
	}
	h.PID = pid

	b.logger.Info("Bridge spawned",
		zap.String("session", spec.Name),
		zap.Int("port", spec.Port),
		zap.Int("pid", pid),
		zap.Bool("tls", b.TLS()))
	return h, nil
}

// HealthCheck reports whether the bridge port is bound.
func (b *Bridge) HealthCheck(ctx context.Context, h supervisor.Handle) bool {
	bound, err := b.probe.IsPortBound(ctx, h.Port)
	return err == nil && bound
}

// Stop terminates the ttyd processes listening on the handle's port. A
// listener that is not ttyd is left alone. When the port owners cannot be
// resolved it falls back to a pattern kill.
func (b *Bridge) Stop(ctx context.Context, h supervisor.Handle) error {
	if h.Port <= 0 {
		return nil
	}

	pids, err := b.probe.PIDsOnPort(ctx, h.Port)
	if err != nil {
		b.logger.Debug("Port owner lookup failed, using pattern kill", zap.Int("port", h.Port), zap.Error(err))
		return b.patternKill(ctx, h.Port)
	}
	if len(pids) == 0 {
		return nil
	}

	owners := make(map[int]bool, len(pids))
	for _, pid := range pids {
		owners[pid] = true
	}
	bridge := probe.BinaryMatcher{Name: "ttyd"}
	procs, err := b.probe.ListProcesses(ctx, probe.MatchFunc(func(p probe.ProcessInfo) bool {
		return owners[p.PID] && bridge.Match(p)
	}))
	if err != nil {
		return b.patternKill(ctx, h.Port)
	}
	if len(procs) == 0 {
		b.logger.Warn("Port held by a foreign process, not stopping it",
			zap.Int("port", h.Port), zap.Ints("pids", pids))
		return nil
	}

	var errs []error
	for _, p := range procs {
		if err := b.kill(p.PID); err != nil {
			errs = append(errs, fmt.Errorf("pid %d: %w", p.PID, err))
			continue
		}
		b.logger.Info("Bridge stopped", zap.String("session", h.Name), zap.Int("port", h.Port), zap.Int("pid", p.PID))
	}
	return errors.Join(errs...)
}

func (b *Bridge) patternKill(ctx context.Context, port int) error {
	_, err := b.runner.Run(ctx, "pkill", "-f", fmt.Sprintf("ttyd.*-p %d( |$)", port))
	if err != nil && !runner.IsExit(err) {
		return fmt.Errorf("failed to stop bridge on port %d: %w", port, err)
	}
	return nil
}

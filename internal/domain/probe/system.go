package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
)

// processTable is the platform-specific half of a probe.
type processTable interface {
	list(ctx context.Context) ([]ProcessInfo, error)
	cwd(ctx context.Context, pid int) (string, error)
}

// System composes a process table backend with a port strategy chain.
type System struct {
	table  processTable
	ports  *Chain
	runner runner.Runner
}

// Option customizes New.
type Option func(*options)

type options struct {
	observer func(strategy, result string)
	cooldown time.Duration
}

// WithObserver receives one callback per strategy attempt.
func WithObserver(fn func(strategy, result string)) Option {
	return func(o *options) { o.observer = fn }
}

// WithCooldown sets how long a failing strategy is skipped.
func WithCooldown(d time.Duration) Option {
	return func(o *options) { o.cooldown = d }
}

// New selects the backend for the running platform.
func New(r runner.Runner, logger *zap.Logger, opts ...Option) *System {
	o := options{cooldown: 30 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	table, strategies := platformBackend(r)
	return newSystem(r, table, strategies, logger, o)
}

func newSystem(r runner.Runner, table processTable, strategies []PortStrategy, logger *zap.Logger, o options) *System {
	if logger == nil {
		logger = zap.NewNop()
	}

	guarded := make([]guardedStrategy, 0, len(strategies))
	for _, s := range strategies {
		guarded = append(guarded, guardedStrategy{
			PortStrategy: s,
			breaker: resilience.New(s.Name(), resilience.Settings{
				FailureThreshold: 3,
				Cooldown:         o.cooldown,
				OnStateChange: func(name string, from, to resilience.State) {
					logger.Warn("Port probe strategy state changed",
						zap.String("strategy", name),
						zap.String("from", from.String()),
						zap.String("to", to.String()),
					)
				},
			}),
		})
	}

	return &System{
		table:  table,
		ports:  &Chain{strategies: guarded, observer: o.observer},
		runner: r,
	}
}

// IsPortBound implements Probe.
func (s *System) IsPortBound(ctx context.Context, port int) (bool, error) {
	return s.ports.Bound(ctx, port)
}

// ListeningPorts implements Probe.
func (s *System) ListeningPorts(ctx context.Context, lo, hi int) (map[int]bool, error) {
	return s.ports.Listening(ctx, lo, hi)
}

// PIDsOnPort implements Probe. lsof is asked first, ss second.
func (s *System) PIDsOnPort(ctx context.Context, port int) ([]int, error) {
	out, err := s.runner.Run(ctx, "lsof", "-nP", "-t", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	if err == nil || (runner.IsExit(err) && out == "") {
		return parsePIDLines(out), nil
	}

	out, ssErr := s.runner.Run(ctx, "ss", "-tlnpH", fmt.Sprintf("sport = :%d", port))
	if ssErr != nil {
		return nil, fmt.Errorf("failed to resolve listeners on port %d: %w", port, ssErr)
	}
	return parseSSPIDs(out), nil
}

// ListProcesses implements Probe.
func (s *System) ListProcesses(ctx context.Context, m Matcher) ([]ProcessInfo, error) {
	all, err := s.table.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	if m == nil {
		return all, nil
	}

	matched := make([]ProcessInfo, 0, len(all))
	for _, p := range all {
		if m.Match(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

// WorkingDirectoryOf implements Probe.
func (s *System) WorkingDirectoryOf(ctx context.Context, pid int) (string, error) {
	if pid <= 0 {
		return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
	}
	return s.table.cwd(ctx, pid)
}

func parsePIDLines(out string) []int {
	var pids []int
	for _, line := range strings.Split(out, "\n") {
		if pid, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && pid > 0 {
			pids = append(pids, pid)
		}
	}
	return pids
}

// parseSSPIDs extracts pid=N tokens from `ss -p` output.
func parseSSPIDs(out string) []int {
	var pids []int
	seen := make(map[int]bool)
	for _, field := range strings.FieldsFunc(out, func(r rune) bool {
		return r == ',' || r == '(' || r == ')' || r == ' ' || r == '\n'
	}) {
		if !strings.HasPrefix(field, "pid=") {
			continue
		}
		pid, err := strconv.Atoi(strings.TrimPrefix(field, "pid="))
		if err == nil && !seen[pid] {
			seen[pid] = true
			pids = append(pids, pid)
		}
	}
	return pids
}

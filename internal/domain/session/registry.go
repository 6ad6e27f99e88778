package session

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/remotehub/internal/domain/ports"
	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
)

// Multiplexer supervises multiplexer targets and relays input to them.
type Multiplexer interface {
	supervisor.Supervisor
	List(ctx context.Context) ([]supervisor.Target, error)
	AttachCommand(name string) []string
	SendKeys(ctx context.Context, name, key string) error
	Paste(ctx context.Context, name, text string) error
	Scroll(ctx context.Context, name string, up bool) error
}

// Registry derives the session list from the multiplexer and the OS probe.
type Registry struct {
	mux     Multiplexer
	probe   probe.Probe
	alloc   *ports.Allocator
	metrics Recorder
}

// NewRegistry creates a registry. metrics may be nil.
func NewRegistry(mux Multiplexer, p probe.Probe, alloc *ports.Allocator, metrics Recorder) *Registry {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Registry{mux: mux, probe: p, alloc: alloc, metrics: metrics}
}

// Allocator returns the port allocator.
func (r *Registry) Allocator() *ports.Allocator {
	return r.alloc
}

// PortOf returns the port a live target uses: the recorded one, or the
// hashed default for targets created without a record.
func (r *Registry) PortOf(t supervisor.Target) int {
	if t.Port > 0 {
		return t.Port
	}
	return r.alloc.PortFor(t.Name)
}

// Claimed builds the port to name table of live targets.
func (r *Registry) Claimed(targets []supervisor.Target) map[int]string {
	claimed := make(map[int]string, len(targets))
	for _, t := range targets {
		claimed[r.PortOf(t)] = t.Name
	}
	return claimed
}

// Targets returns the live hub-owned multiplexer targets.
func (r *Registry) Targets(ctx context.Context) ([]supervisor.Target, error) {
	targets, err := r.mux.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list multiplexer targets: %w", err)
	}
	return targets, nil
}

// Find returns the live target for name.
func (r *Registry) Find(ctx context.Context, name string) (supervisor.Target, bool, error) {
	targets, err := r.Targets(ctx)
	if err != nil {
		return supervisor.Target{}, false, err
	}
	for _, t := range targets {
		if t.Name == name {
			return t, true, nil
		}
	}
	return supervisor.Target{}, false, nil
}

// List returns every live session sorted by name. The target listing and
// the port scan run in parallel; the call fails only if either source does.
func (r *Registry) List(ctx context.Context) ([]Session, error) {
	var (
		targets []supervisor.Target
		bound   map[int]bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		targets, err = r.Targets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bound, err = r.probe.ListeningPorts(gctx, r.alloc.Base(), r.alloc.Base()+r.alloc.Size()-1)
		if err != nil {
			return fmt.Errorf("failed to scan session ports: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sessions := make([]Session, 0, len(targets))
	for _, t := range targets {
		port := r.PortOf(t)
		isBound := bound[port]
		if !r.alloc.Contains(port) {
			// recorded under a previous port range
			isBound, _ = r.probe.IsPortBound(ctx, port)
		}
		sessions = append(sessions, r.snapshot(t, port, isBound))
	}

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Name < sessions[j].Name })
	r.metrics.SessionsActive(len(sessions))
	return sessions, nil
}

// Get returns the live session called name, or ErrNotFound.
func (r *Registry) Get(ctx context.Context, name string) (*Session, error) {
	t, ok, err := r.Find(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	port := r.PortOf(t)
	bound, err := r.probe.IsPortBound(ctx, port)
	if err != nil {
		return nil, fmt.Errorf("failed to probe port %d: %w", port, err)
	}
	s := r.snapshot(t, port, bound)
	return &s, nil
}

func (r *Registry) snapshot(t supervisor.Target, port int, bound bool) Session {
	s := Session{
		Name:             t.Name,
		Port:             port,
		WorkingDirectory: t.Path,
		Status:           StatusDegraded,
		Attached:         t.Attached,
		Windows:          t.Windows,
	}
	if bound {
		s.Status = StatusRunning
	}
	if !t.LastActivity.IsZero() {
		s.LastActivity = t.LastActivity.Unix()
	}
	return s
}

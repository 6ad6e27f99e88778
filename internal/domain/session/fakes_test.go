package session

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/remotehub/internal/domain/ports"
	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
	"github.com/GriffinCanCode/remotehub/internal/domain/probe/probetest"
	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
)

// fakeMux keeps targets in memory the way a tmux server would.
type fakeMux struct {
	mu       sync.Mutex
	targets  map[string]supervisor.Target
	creates  int
	keys     []string
	pastes   []string
	scrolls  []bool
	startErr error
	listErr  error
}

func newFakeMux() *fakeMux {
	return &fakeMux{targets: make(map[string]supervisor.Target)}
}

func (m *fakeMux) add(t supervisor.Target) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets[t.Name] = t
}

func (m *fakeMux) Start(_ context.Context, spec supervisor.Spec) (supervisor.Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := supervisor.Handle{Name: spec.Name, Port: spec.Port}
	if _, ok := m.targets[spec.Name]; ok {
		return h, nil
	}
	if m.startErr != nil {
		return h, m.startErr
	}
	m.creates++
	m.targets[spec.Name] = supervisor.Target{
		Name:         spec.Name,
		Port:         spec.Port,
		Path:         spec.Dir,
		Windows:      1,
		LastActivity: time.Unix(1700000000, 0),
	}
	return h, nil
}

func (m *fakeMux) HealthCheck(_ context.Context, h supervisor.Handle) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.targets[h.Name]
	return ok
}

func (m *fakeMux) Stop(_ context.Context, h supervisor.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.targets, h.Name)
	return nil
}

func (m *fakeMux) List(context.Context) ([]supervisor.Target, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]supervisor.Target, 0, len(m.targets))
	for _, t := range m.targets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *fakeMux) AttachCommand(name string) []string {
	return []string{"tmux", "attach-session", "-t", "claude-" + name}
}

func (m *fakeMux) SendKeys(_ context.Context, name, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, name+":"+key)
	return nil
}

func (m *fakeMux) Paste(_ context.Context, name, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pastes = append(m.pastes, name+":"+text)
	return nil
}

func (m *fakeMux) Scroll(_ context.Context, _ string, up bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrolls = append(m.scrolls, up)
	return nil
}

// fakeBridge binds the session port on the fake probe when started and
// registers a ttyd process attached to the session's target.
type fakeBridge struct {
	mu       sync.Mutex
	probe    *probetest.Fake
	noBind   bool
	started  []int
	stopped  []int
	nextPID  int
	startErr error
}

func (b *fakeBridge) Start(_ context.Context, spec supervisor.Spec) (supervisor.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return supervisor.Handle{}, b.startErr
	}
	b.nextPID++
	pid := 9000 + b.nextPID
	b.started = append(b.started, spec.Port)
	if !b.noBind {
		b.probe.Bind(spec.Port, pid)
		args := append([]string{"ttyd", "-W", "-p", strconv.Itoa(spec.Port)}, spec.Command...)
		b.probe.AddProcess(probe.ProcessInfo{PID: pid, PPID: 1, Args: args}, "")
	}
	return supervisor.Handle{Name: spec.Name, Port: spec.Port, PID: pid}, nil
}

func (b *fakeBridge) HealthCheck(ctx context.Context, h supervisor.Handle) bool {
	bound, err := b.probe.IsPortBound(ctx, h.Port)
	return err == nil && bound
}

func (b *fakeBridge) Stop(_ context.Context, h supervisor.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = append(b.stopped, h.Port)
	pids, _ := b.probe.PIDsOnPort(context.Background(), h.Port)
	for _, pid := range pids {
		b.probe.RemoveProcess(pid)
	}
	b.probe.Unbind(h.Port)
	return nil
}

// countingRecorder tallies start results.
type countingRecorder struct {
	mu     sync.Mutex
	starts map[string]int
	stops  int
	active int
	waits  int
}

func (r *countingRecorder) SessionStarted(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.starts == nil {
		r.starts = make(map[string]int)
	}
	r.starts[result]++
}

func (r *countingRecorder) SessionStopped() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
}

func (r *countingRecorder) SessionsActive(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = n
}

func (r *countingRecorder) ReadinessWait(time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits++
}

type harness struct {
	mux      *fakeMux
	probe    *probetest.Fake
	bridge   *fakeBridge
	metrics  *countingRecorder
	launcher *Launcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	alloc, err := ports.New(7700, 99)
	require.NoError(t, err)

	h := &harness{
		mux:     newFakeMux(),
		probe:   probetest.New(),
		metrics: &countingRecorder{},
	}
	h.bridge = &fakeBridge{probe: h.probe}
	registry := NewRegistry(h.mux, h.probe, alloc, h.metrics)
	h.launcher = NewLauncher(registry, h.bridge, Config{
		ReadyTimeout:  100 * time.Millisecond,
		ReadyInterval: 5 * time.Millisecond,
	}, nil)
	return h
}

var errBoom = errors.New("boom")

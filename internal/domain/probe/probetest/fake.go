// Package probetest provides an in-memory probe.Probe for tests.
package probetest

import (
	"context"
	"sort"
	"sync"

	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
)

// Fake answers probe queries from mutable tables.
type Fake struct {
	mu        sync.Mutex
	bound     map[int][]int
	processes map[int]probe.ProcessInfo
	cwds      map[int]string

	// Err, when set, fails every port query.
	Err error
}

// New creates an empty fake: no ports bound, no processes.
func New() *Fake {
	return &Fake{
		bound:     make(map[int][]int),
		processes: make(map[int]probe.ProcessInfo),
		cwds:      make(map[int]string),
	}
}

// Bind marks port as listening, owned by pids.
func (f *Fake) Bind(port int, pids ...int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound[port] = pids
}

// Unbind releases port.
func (f *Fake) Unbind(port int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bound, port)
}

// AddProcess registers a process and its working directory.
func (f *Fake) AddProcess(p probe.ProcessInfo, cwd string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes[p.PID] = p
	if cwd != "" {
		f.cwds[p.PID] = cwd
	}
}

// RemoveProcess forgets a process.
func (f *Fake) RemoveProcess(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.processes, pid)
	delete(f.cwds, pid)
}

// IsPortBound implements probe.Probe.
func (f *Fake) IsPortBound(_ context.Context, port int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	_, ok := f.bound[port]
	return ok, nil
}

// ListeningPorts implements probe.Probe.
func (f *Fake) ListeningPorts(_ context.Context, lo, hi int) (map[int]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	ports := make(map[int]bool)
	for port := range f.bound {
		if port >= lo && port <= hi {
			ports[port] = true
		}
	}
	return ports, nil
}

// PIDsOnPort implements probe.Probe.
func (f *Fake) PIDsOnPort(_ context.Context, port int) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]int(nil), f.bound[port]...), nil
}

// ListProcesses implements probe.Probe. Results are ordered by pid.
func (f *Fake) ListProcesses(_ context.Context, m probe.Matcher) ([]probe.ProcessInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []probe.ProcessInfo
	for _, p := range f.processes {
		if m.Match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out, nil
}

// WorkingDirectoryOf implements probe.Probe.
func (f *Fake) WorkingDirectoryOf(_ context.Context, pid int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cwd, ok := f.cwds[pid]
	if !ok {
		return "", probe.ErrNotFound
	}
	return cwd, nil
}

var _ probe.Probe = (*Fake)(nil)

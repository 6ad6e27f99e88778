package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/domain/conversation"
	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
)

// maxDepth bounds ancestry walks through the process table.
const maxDepth = 64

// Process is a CLI process that can be captured.
type Process struct {
	PID              int    `json:"pid"`
	WorkingDirectory string `json:"working_directory"`
	Project          string `json:"project"`
	ConversationID   string `json:"conversation_id,omitempty"`
	Command          string `json:"command"`
	// DiscoveredAt is when the query that produced this entry ran.
	DiscoveredAt time.Time `json:"discovered_at"`
	// LastActivity is the conversation's last write in unix seconds, zero
	// when no conversation was found.
	LastActivity int64 `json:"last_activity"`
}

// PaneLister reports the pane processes of managed targets.
type PaneLister interface {
	PanePIDs(ctx context.Context) (map[int]string, error)
}

// Discoverer lists capturable CLI processes.
type Discoverer struct {
	probe    probe.Probe
	panes    PaneLister
	resolver *conversation.Resolver
	matcher  probe.Matcher
	now      func() time.Time
	logger   *zap.Logger
}

// NewDiscoverer creates a discoverer for processes running claudeBin.
func NewDiscoverer(p probe.Probe, panes PaneLister, resolver *conversation.Resolver, claudeBin string, logger *zap.Logger) *Discoverer {
	if claudeBin == "" {
		claudeBin = "claude"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		probe:    p,
		panes:    panes,
		resolver: resolver,
		matcher:  probe.BinaryMatcher{Name: claudeBin},
		now:      time.Now,
		logger:   logger,
	}
}

// List returns the capturable processes, most recently active first.
func (d *Discoverer) List(ctx context.Context) ([]Process, error) {
	procs, err := d.probe.ListProcesses(ctx, probe.All)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}
	panes, err := d.panes.PanePIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed panes: %w", err)
	}

	discovered := d.now()
	parent := make(map[int]int, len(procs))
	candidates := make(map[int]probe.ProcessInfo)
	for _, p := range procs {
		parent[p.PID] = p.PPID
		if d.matcher.Match(p) {
			candidates[p.PID] = p
		}
	}

	out := make([]Process, 0, len(candidates))
	for pid, info := range candidates {
		if _, ok := panes[pid]; ok || ancestorIn(pid, parent, func(a int) bool { _, ok := panes[a]; return ok }) {
			continue
		}
		if ancestorIn(pid, parent, func(a int) bool { _, ok := candidates[a]; return ok }) {
			continue
		}

		cwd, err := d.probe.WorkingDirectoryOf(ctx, pid)
		if err != nil {
			if !errors.Is(err, probe.ErrNotFound) {
				d.logger.Debug("Skipping process with unknown cwd", zap.Int("pid", pid), zap.Error(err))
			}
			continue
		}

		proc := Process{
			PID:              pid,
			WorkingDirectory: cwd,
			Project:          filepath.Base(cwd),
			Command:          info.Command(),
			DiscoveredAt:     discovered,
		}
		conv, err := d.resolver.Latest(cwd)
		switch {
		case err == nil:
			proc.ConversationID = conv.ID
			proc.LastActivity = conv.Modified.Unix()
		case !errors.Is(err, conversation.ErrNotFound):
			d.logger.Debug("Conversation lookup failed", zap.Int("pid", pid), zap.Error(err))
		}
		out = append(out, proc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActivity != out[j].LastActivity {
			return out[i].LastActivity > out[j].LastActivity
		}
		return out[i].PID > out[j].PID
	})
	return out, nil
}

// Find returns the capturable process with pid from a fresh discovery.
func (d *Discoverer) Find(ctx context.Context, pid int) (Process, error) {
	procs, err := d.List(ctx)
	if err != nil {
		return Process{}, err
	}
	for _, p := range procs {
		if p.PID == pid {
			return p, nil
		}
	}
	return Process{}, fmt.Errorf("%w: pid %d", ErrNotFound, pid)
}

// ancestorIn walks up from pid and reports whether any strict ancestor
// satisfies match.
func ancestorIn(pid int, parent map[int]int, match func(int) bool) bool {
	seen := make(map[int]bool)
	for cur, depth := parent[pid], 0; cur > 1 && depth < maxDepth; cur, depth = parent[cur], depth+1 {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		if match(cur) {
			return true
		}
	}
	return false
}

package session

import (
	"context"

	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
)

// portOwner describes who listens on a session port.
type portOwner int

const (
	ownerNone portOwner = iota
	// ownerSelf is a bridge attached to the session's own target.
	ownerSelf
	// ownerOther is anything else: another session's bridge or a foreign listener.
	ownerOther
)

// ownerOf classifies the listener on port relative to name and returns the
// bridge pid when it belongs to name. A failed process lookup reads as
// ownerOther so nothing foreign is ever adopted or stopped.
func (l *Launcher) ownerOf(ctx context.Context, name string, port int) (portOwner, int, error) {
	pids, err := l.registry.probe.PIDsOnPort(ctx, port)
	if err != nil {
		return ownerOther, 0, err
	}
	if len(pids) == 0 {
		bound, err := l.registry.probe.IsPortBound(ctx, port)
		if err != nil {
			return ownerOther, 0, err
		}
		if bound {
			// bound but the owner is not visible to us
			return ownerOther, 0, nil
		}
		return ownerNone, 0, nil
	}

	owners := make(map[int]bool, len(pids))
	for _, pid := range pids {
		owners[pid] = true
	}
	bridge := probe.BinaryMatcher{Name: l.cfg.BridgeBin}
	attach := l.registry.mux.AttachCommand(name)
	procs, err := l.registry.probe.ListProcesses(ctx, probe.MatchFunc(func(p probe.ProcessInfo) bool {
		return owners[p.PID] && bridge.Match(p) && attaches(p.Args, attach)
	}))
	if err != nil {
		return ownerOther, 0, err
	}
	if len(procs) == 0 {
		return ownerOther, 0, nil
	}
	return ownerSelf, procs[0].PID, nil
}

// attaches reports whether a bridge argv ends with the attach command,
// ignoring how the multiplexer binary itself was spelled.
func attaches(args, attach []string) bool {
	if len(attach) < 2 || len(args) < len(attach) {
		return false
	}
	tail := args[len(args)-len(attach)+1:]
	for i, a := range attach[1:] {
		if tail[i] != a {
			return false
		}
	}
	return true
}

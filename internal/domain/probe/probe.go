package probe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned when a process has exited.
	ErrNotFound = errors.New("process not found")
	// ErrNoStrategy is returned when every port probing strategy failed.
	ErrNoStrategy = errors.New("all port probe strategies failed")
)

// ProcessInfo describes one entry of the process table.
type ProcessInfo struct {
	PID  int      `json:"pid"`
	PPID int      `json:"ppid"`
	Args []string `json:"args"`
}

// Command returns the joined command line.
func (p ProcessInfo) Command() string {
	return strings.Join(p.Args, " ")
}

// Matcher selects processes from the table.
type Matcher interface {
	Match(p ProcessInfo) bool
}

// MatchFunc adapts a function to Matcher.
type MatchFunc func(p ProcessInfo) bool

// Match implements Matcher.
func (f MatchFunc) Match(p ProcessInfo) bool { return f(p) }

// All matches every process.
var All Matcher = MatchFunc(func(ProcessInfo) bool { return true })

// interpreters may front a script-installed CLI (node /usr/bin/claude ...).
var interpreters = map[string]bool{"node": true, "bun": true, "deno": true}

// BinaryMatcher matches processes running the named binary, directly or
// through a script interpreter.
type BinaryMatcher struct {
	Name string
}

// Match implements Matcher.
func (m BinaryMatcher) Match(p ProcessInfo) bool {
	if len(p.Args) == 0 || m.Name == "" {
		return false
	}
	want := filepath.Base(m.Name)
	first := filepath.Base(p.Args[0])
	if first == want {
		return true
	}
	return interpreters[first] && len(p.Args) > 1 && filepath.Base(p.Args[1]) == want
}

// Probe is the capability surface every other component depends on.
type Probe interface {
	// IsPortBound reports whether something listens on port.
	IsPortBound(ctx context.Context, port int) (bool, error)
	// ListeningPorts returns the bound ports within [lo, hi].
	ListeningPorts(ctx context.Context, lo, hi int) (map[int]bool, error)
	// PIDsOnPort returns the pids listening on port.
	PIDsOnPort(ctx context.Context, port int) ([]int, error)
	// ListProcesses returns processes selected by m.
	ListProcesses(ctx context.Context, m Matcher) ([]ProcessInfo, error)
	// WorkingDirectoryOf resolves a process's current directory; ErrNotFound if it exited.
	WorkingDirectoryOf(ctx context.Context, pid int) (string, error)
}

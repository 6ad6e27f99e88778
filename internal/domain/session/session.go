package session

import (
	"errors"
	"time"
)

// Errors returned by the session core.
var (
	ErrInvalidName      = errors.New("invalid session name")
	ErrInvalidDirectory = errors.New("invalid working directory")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSpawnFailure     = errors.New("failed to spawn session process")
	ErrNotFound         = errors.New("session not found")
)

// Status is the derived state of a session.
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusDegraded Status = "degraded"
	StatusStopped  Status = "stopped"
)

// Session is a snapshot of one managed session.
type Session struct {
	Name             string `json:"name"`
	Port             int    `json:"port"`
	WorkingDirectory string `json:"working_directory"`
	Status           Status `json:"status"`
	BridgePID        int    `json:"bridge_pid,omitempty"`
	Attached         bool   `json:"attached"`
	Windows          int    `json:"windows"`
	// LastActivity is unix seconds, zero when unknown.
	LastActivity int64 `json:"last_activity"`
}

// Readiness reports whether a session's bridge accepts connections.
type Readiness struct {
	Ready bool `json:"ready"`
	Port  int  `json:"port"`
}

// StartOptions tunes Start.
type StartOptions struct {
	// Dir is the working directory for a new target.
	Dir string
	// SkipPermissions adds the CLI's skip-permissions flag.
	SkipPermissions bool
	// Command replaces the CLI command line entirely.
	Command []string
}

// Recorder receives session lifecycle measurements.
type Recorder interface {
	SessionStarted(result string)
	SessionStopped()
	SessionsActive(n int)
	ReadinessWait(d time.Duration, ready bool)
}

type nopRecorder struct{}

func (nopRecorder) SessionStarted(string) {}
func (nopRecorder) SessionStopped() {}
func (nopRecorder) SessionsActive(int) {}
func (nopRecorder) ReadinessWait(time.Duration, bool) {}

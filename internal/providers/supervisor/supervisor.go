// Package supervisor defines the contract shared by the external processes
// the hub keeps alive: the terminal multiplexer targets and the web terminal
// bridges attached to them.
package supervisor

import (
	"context"
	"time"
)

// Spec describes a process to start.
type Spec struct {
	// Name is the session name without any target prefix.
	Name string
	// Dir is the working directory, empty for the caller's default.
	Dir string
	// Port is the session port recorded alongside the process.
	Port int
	// Command is the argv run inside the process.
	Command []string
}

// Handle identifies a started process.
type Handle struct {
	Name string
	Port int
	PID  int
}

// Supervisor starts, checks and stops one kind of external process.
// Stop is idempotent: stopping an absent process is not an error.
type Supervisor interface {
	Start(ctx context.Context, spec Spec) (Handle, error)
	HealthCheck(ctx context.Context, h Handle) bool
	Stop(ctx context.Context, h Handle) error
}

// Target is a live multiplexer target as reported by the multiplexer.
type Target struct {
	// Name is the session name with the target prefix removed.
	Name string
	// Port is the recorded session port, zero when none was recorded.
	Port         int
	Path         string
	Windows      int
	Attached     bool
	LastActivity time.Time
}

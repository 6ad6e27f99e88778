package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrExit wraps non-zero exits so callers can tell "ran and said no" apart
// from "could not run at all".
var ErrExit = errors.New("command exited with non-zero status")

// Runner executes external commands.
type Runner interface {
	// Run executes a command and returns its trimmed stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// RunInput is Run with stdin fed from input.
	RunInput(ctx context.Context, input string, name string, args ...string) (string, error)
	// Spawn starts a detached long-lived process and returns its pid.
	Spawn(name string, args ...string) (int, error)
}

// Exec implements Runner using os/exec.
type Exec struct{}

// New returns the os/exec backed runner.
func New() *Exec {
	return &Exec{}
}

// Run implements Runner.
func (e *Exec) Run(ctx context.Context, name string, args ...string) (string, error) {
	return e.RunInput(ctx, "", name, args...)
}

// RunInput implements Runner.
func (e *Exec) RunInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, fmt.Errorf("%s %s: %w (code %d): %s",
				name, strings.Join(args, " "), ErrExit, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Spawn implements Runner. The child is placed in its own session so it
// outlives the control plane, and is reaped in the background.
func (e *Exec) Spawn(name string, args ...string) (int, error) {
	cmd := exec.Command(name, args...)
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}

	pid := cmd.Process.Pid
	go cmd.Wait()

	return pid, nil
}

// IsExit reports whether err came from a command that ran and exited non-zero.
func IsExit(err error) bool {
	return errors.Is(err, ErrExit)
}

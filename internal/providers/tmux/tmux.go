package tmux

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
)

const (
	// Prefix marks multiplexer targets owned by the hub.
	Prefix = "claude-"

	// PortOption is the tmux user option holding the session port.
	PortOption = "@hub_port"

	listFormat = "#{session_name}|#{session_activity}|#{session_windows}|#{session_attached}|#{" + PortOption + "}|#{session_path}"
	paneFormat = "#{session_name}|#{pane_pid}"
)

// ErrNoCommand is returned when Start is called without a command.
var ErrNoCommand = errors.New("no command to run in target")

// Client drives a tmux server through its CLI.
type Client struct {
	runner runner.Runner
	bin    string
	logger *zap.Logger
}

var _ supervisor.Supervisor = (*Client)(nil)

// New creates a client for the tmux binary at bin.
func New(r runner.Runner, bin string, logger *zap.Logger) *Client {
	if bin == "" {
		bin = "tmux"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{runner: r, bin: bin, logger: logger}
}

// Target returns the tmux session name for a hub session name.
func Target(name string) string {
	return Prefix + name
}

// exact pins a target to an exact session name instead of tmux's prefix match.
func exact(name string) string {
	return "=" + Target(name)
}

// Start creates the target if it does not exist yet. A target created
// concurrently by someone else counts as success.
func (c *Client) Start(ctx context.Context, spec supervisor.Spec) (supervisor.Handle, error) {
	h := supervisor.Handle{Name: spec.Name, Port: spec.Port}
	if c.HealthCheck(ctx, h) {
		return h, nil
	}
	if len(spec.Command) == 0 {
		return h, ErrNoCommand
	}

	target := Target(spec.Name)
	args := []string{"new-session", "-d", "-s", target}
	if spec.Dir != "" {
		args = append(args, "-c", spec.Dir)
	}
	args = append(args, spec.Command...)

	if _, err := c.runner.Run(ctx, c.bin, args...); err != nil {
		if c.HealthCheck(ctx, h) {
			c.logger.Debug("Target created concurrently", zap.String("target", target))
			return h, nil
		}
		return h, fmt.Errorf("failed to create target %s: %w", target, err)
	}

	if _, err := c.runner.Run(ctx, c.bin, "set-option", "-t", exact(spec.Name), "mouse", "on"); err != nil {
		c.logger.Warn("Failed to enable mouse mode", zap.String("target", target), zap.Error(err))
	}

	if spec.Port > 0 {
		if _, err := c.runner.Run(ctx, c.bin, "set-option", "-t", exact(spec.Name), PortOption, strconv.Itoa(spec.Port)); err != nil {
			_ = c.Stop(ctx, h)
			return h, fmt.Errorf("failed to record port on %s: %w", target, err)
		}
	}

	c.logger.Info("Target created",
		zap.String("target", target),
		zap.String("dir", spec.Dir),
		zap.Int("port", spec.Port))
	return h, nil
}

// HealthCheck reports whether the target exists.
func (c *Client) HealthCheck(ctx context.Context, h supervisor.Handle) bool {
	_, err := c.runner.Run(ctx, c.bin, "has-session", "-t", exact(h.Name))
	return err == nil
}

// Stop kills the target. An absent target is not an error.
func (c *Client) Stop(ctx context.Context, h supervisor.Handle) error {
	_, err := c.runner.Run(ctx, c.bin, "kill-session", "-t", exact(h.Name))
	if err == nil {
		c.logger.Info("Target killed", zap.String("target", Target(h.Name)))
		return nil
	}
	if runner.IsExit(err) && !c.HealthCheck(ctx, h) {
		return nil
	}
	return fmt.Errorf("failed to kill target %s: %w", Target(h.Name), err)
}

// List returns the hub-owned targets. A tmux server that is not running has
// no targets.
func (c *Client) List(ctx context.Context) ([]supervisor.Target, error) {
	out, err := c.runner.Run(ctx, c.bin, "list-sessions", "-F", listFormat)
	if err != nil {
		if runner.IsExit(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	return parseTargets(out), nil
}

func parseTargets(out string) []supervisor.Target {
	var targets []supervisor.Target
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), "|", 6)
		if len(fields) < 6 || !strings.HasPrefix(fields[0], Prefix) {
			continue
		}

		t := supervisor.Target{
			Name: strings.TrimPrefix(fields[0], Prefix),
			Path: fields[5],
		}
		if secs, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			t.LastActivity = time.Unix(secs, 0)
		}
		t.Windows, _ = strconv.Atoi(fields[2])
		attached, _ := strconv.Atoi(fields[3])
		t.Attached = attached > 0
		t.Port, _ = strconv.Atoi(fields[4])

		targets = append(targets, t)
	}
	return targets
}

// PanePIDs maps the pid of every pane process in a hub-owned target to the
// session name.
func (c *Client) PanePIDs(ctx context.Context) (map[int]string, error) {
	out, err := c.runner.Run(ctx, c.bin, "list-panes", "-a", "-F", paneFormat)
	if err != nil {
		if runner.IsExit(err) {
			return map[int]string{}, nil
		}
		return nil, fmt.Errorf("failed to list panes: %w", err)
	}

	pids := make(map[int]string)
	for _, line := range strings.Split(out, "\n") {
		session, pidStr, ok := strings.Cut(strings.TrimSpace(line), "|")
		if !ok || !strings.HasPrefix(session, Prefix) {
			continue
		}
		if pid, err := strconv.Atoi(pidStr); err == nil && pid > 0 {
			pids[pid] = strings.TrimPrefix(session, Prefix)
		}
	}
	return pids, nil
}

// AttachCommand returns the argv that attaches a terminal to the target.
func (c *Client) AttachCommand(name string) []string {
	return []string{c.bin, "attach-session", "-t", Target(name)}
}

// SendKeys delivers one named key to the target's active pane.
func (c *Client) SendKeys(ctx context.Context, name, key string) error {
	if _, err := c.runner.Run(ctx, c.bin, "send-keys", "-t", Target(name), key); err != nil {
		return fmt.Errorf("failed to send %s to %s: %w", key, Target(name), err)
	}
	return nil
}

// Paste inserts text verbatim through a one-shot paste buffer, so the
// content is never interpreted as key names.
func (c *Client) Paste(ctx context.Context, name, text string) error {
	buffer := "hub-" + uuid.NewString()
	if _, err := c.runner.RunInput(ctx, text, c.bin, "load-buffer", "-b", buffer, "-"); err != nil {
		return fmt.Errorf("failed to load paste buffer: %w", err)
	}
	if _, err := c.runner.Run(ctx, c.bin, "paste-buffer", "-d", "-b", buffer, "-t", Target(name)); err != nil {
		_, _ = c.runner.Run(ctx, c.bin, "delete-buffer", "-b", buffer)
		return fmt.Errorf("failed to paste into %s: %w", Target(name), err)
	}
	return nil
}

// Scroll enters copy mode and pages the scrollback up or down.
func (c *Client) Scroll(ctx context.Context, name string, up bool) error {
	target := Target(name)
	if _, err := c.runner.Run(ctx, c.bin, "copy-mode", "-t", target); err != nil {
		return fmt.Errorf("failed to enter copy mode on %s: %w", target, err)
	}
	key := "PageDown"
	if up {
		key = "PageUp"
	}
	if _, err := c.runner.Run(ctx, c.bin, "send-keys", "-t", target, key); err != nil {
		return fmt.Errorf("failed to scroll %s: %w", target, err)
	}
	return nil
}

package capture

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/remotehub/internal/domain/session"
	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

// Errors returned by capture.
var (
	ErrNotFound       = errors.New("capturable process not found")
	ErrNoConversation = errors.New("process has no resumable conversation")
)

// Capture results reported to the Recorder.
const (
	ResultCaptured       = "captured"
	ResultNotFound       = "not_found"
	ResultNoConversation = "no_conversation"
	ResultFailed         = "failed"
)

const fallbackName = "session"

// Starter starts managed sessions.
type Starter interface {
	Start(ctx context.Context, name string, opts session.StartOptions) (*session.Session, error)
}

// TargetLister lists the live managed targets.
type TargetLister interface {
	Targets(ctx context.Context) ([]supervisor.Target, error)
}

// Recorder receives capture outcomes.
type Recorder interface {
	CaptureAttempted(result string)
}

type nopRecorder struct{}

func (nopRecorder) CaptureAttempted(string) {}

// Capturer forks discovered processes into managed sessions.
type Capturer struct {
	discoverer *Discoverer
	starter    Starter
	targets    TargetLister
	claudeBin  string
	metrics    Recorder
	logger     *zap.Logger
}

// NewCapturer creates a capturer. metrics may be nil.
func NewCapturer(d *Discoverer, starter Starter, targets TargetLister, claudeBin string, metrics Recorder, logger *zap.Logger) *Capturer {
	if claudeBin == "" {
		claudeBin = "claude"
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capturer{
		discoverer: d,
		starter:    starter,
		targets:    targets,
		claudeBin:  claudeBin,
		metrics:    metrics,
		logger:     logger,
	}
}

// ForkCommand is the CLI command line that resumes conversationID as a new,
// independent conversation.
func (c *Capturer) ForkCommand(conversationID string) []string {
	return []string{c.claudeBin, "--resume", conversationID, "--fork-session"}
}

// Capture forks the conversation of pid into a new managed session in the
// same working directory. The source process keeps running.
func (c *Capturer) Capture(ctx context.Context, pid int) (*session.Session, error) {
	proc, err := c.discoverer.Find(ctx, pid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.metrics.CaptureAttempted(ResultNotFound)
		} else {
			c.metrics.CaptureAttempted(ResultFailed)
		}
		return nil, err
	}
	if proc.ConversationID == "" {
		c.metrics.CaptureAttempted(ResultNoConversation)
		return nil, fmt.Errorf("%w: pid %d in %s", ErrNoConversation, pid, proc.WorkingDirectory)
	}

	name, err := c.deriveName(ctx, proc.WorkingDirectory)
	if err != nil {
		c.metrics.CaptureAttempted(ResultFailed)
		return nil, err
	}

	s, err := c.starter.Start(ctx, name, session.StartOptions{
		Dir:     proc.WorkingDirectory,
		Command: c.ForkCommand(proc.ConversationID),
	})
	if err != nil {
		c.metrics.CaptureAttempted(ResultFailed)
		return nil, err
	}

	c.metrics.CaptureAttempted(ResultCaptured)
	c.logger.Info("Process captured",
		zap.Int("pid", pid),
		zap.String("session", name),
		zap.String("conversation", proc.ConversationID),
		zap.String("dir", proc.WorkingDirectory))
	return s, nil
}

// deriveName names the session after the working directory, adding -2, -3
// and so on while the name is taken by a live target.
func (c *Capturer) deriveName(ctx context.Context, dir string) (string, error) {
	targets, err := c.targets.Targets(ctx)
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(targets))
	for _, t := range targets {
		taken[t.Name] = true
	}

	base := utils.SanitizeSessionName(filepath.Base(dir), fallbackName)
	if !taken[base] {
		return base, nil
	}
	for i := 2; ; i++ {
		name := base + "-" + strconv.Itoa(i)
		if !taken[name] {
			return name, nil
		}
	}
}

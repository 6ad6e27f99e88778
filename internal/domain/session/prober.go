package session

import (
	"context"
	"time"

	"github.com/GriffinCanCode/remotehub/internal/domain/probe"
)

// DefaultReadyInterval is the pause between readiness probes.
const DefaultReadyInterval = 200 * time.Millisecond

// Prober waits for a bridge port to become bound.
type Prober struct {
	probe    probe.Probe
	interval time.Duration
}

// NewProber creates a prober polling every interval.
func NewProber(p probe.Probe, interval time.Duration) *Prober {
	if interval <= 0 {
		interval = DefaultReadyInterval
	}
	return &Prober{probe: p, interval: interval}
}

// WaitReady polls port until it is bound or timeout elapses. It never
// returns an error: a probe failure or a timeout both read as not ready.
func (p *Prober) WaitReady(ctx context.Context, port int, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if bound, err := p.probe.IsPortBound(ctx, port); err == nil && bound {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

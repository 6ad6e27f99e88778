package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/resilience"
)

// PortStrategy is one way of asking whether ports are bound.
type PortStrategy interface {
	Name() string
	Bound(ctx context.Context, port int) (bool, error)
	Listening(ctx context.Context, lo, hi int) (map[int]bool, error)
}

type guardedStrategy struct {
	PortStrategy
	breaker *resilience.Breaker
}

// Chain tries strategies in order; the first one that answers wins.
type Chain struct {
	strategies []guardedStrategy
	observer   func(strategy, result string)
}

// Bound asks each strategy in turn whether port is bound.
func (c *Chain) Bound(ctx context.Context, port int) (bool, error) {
	var errs []error
	for _, s := range c.strategies {
		var bound bool
		err := s.breaker.Do(func() error {
			var err error
			bound, err = s.Bound(ctx, port)
			return err
		})
		c.observe(s.Name(), err)
		if err == nil {
			return bound, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return false, fmt.Errorf("%w for port %d: %w", ErrNoStrategy, port, errors.Join(errs...))
}

// Listening asks each strategy in turn for the bound ports in [lo, hi].
func (c *Chain) Listening(ctx context.Context, lo, hi int) (map[int]bool, error) {
	var errs []error
	for _, s := range c.strategies {
		var ports map[int]bool
		err := s.breaker.Do(func() error {
			var err error
			ports, err = s.Listening(ctx, lo, hi)
			return err
		})
		c.observe(s.Name(), err)
		if err == nil {
			return ports, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return nil, fmt.Errorf("%w for ports %d-%d: %w", ErrNoStrategy, lo, hi, errors.Join(errs...))
}

func (c *Chain) observe(strategy string, err error) {
	if c.observer == nil {
		return
	}
	switch {
	case err == nil:
		c.observer(strategy, "ok")
	case errors.Is(err, resilience.ErrCircuitOpen):
		c.observer(strategy, "skipped")
	default:
		c.observer(strategy, "error")
	}
}

package session

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/remotehub/internal/providers/supervisor"
	"github.com/GriffinCanCode/remotehub/internal/shared/utils"
)

// SendKeys relays one whitelisted named key to the session.
func (l *Launcher) SendKeys(ctx context.Context, name, key string) error {
	if err := utils.ValidateKey(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := l.requireTarget(ctx, name); err != nil {
		return err
	}
	return l.registry.mux.SendKeys(ctx, name, key)
}

// SendText pastes text verbatim into the session.
func (l *Launcher) SendText(ctx context.Context, name, text string) error {
	if err := utils.ValidatePaste(text, l.cfg.MaxPasteBytes); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := l.requireTarget(ctx, name); err != nil {
		return err
	}
	return l.registry.mux.Paste(ctx, name, text)
}

// Scroll pages the session's scrollback up or down.
func (l *Launcher) Scroll(ctx context.Context, name, direction string) error {
	up, err := utils.ParseScrollDirection(direction)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := l.requireTarget(ctx, name); err != nil {
		return err
	}
	return l.registry.mux.Scroll(ctx, name, up)
}

func (l *Launcher) requireTarget(ctx context.Context, name string) error {
	if err := utils.ValidateSessionName(name); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if !l.registry.mux.HealthCheck(ctx, supervisor.Handle{Name: name}) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while a breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures the circuit breaker behavior
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// Cooldown is how long the breaker stays open before a trial call
	Cooldown time.Duration
	// OnStateChange is called whenever the state changes
	OnStateChange func(name string, from State, to State)
	// Now overrides the clock (tests)
	Now func() time.Time
}

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trial    bool
}

// New creates a new circuit breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold <= 0 {
		settings.FailureThreshold = 3
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}

	return &Breaker{
		name:     name,
		settings: settings,
		state:    StateClosed,
	}
}

// Name returns the name of the circuit breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state of the circuit breaker
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Do runs fn if the breaker accepts the call and records its outcome.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}

	err := fn()
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.trial {
			return ErrCircuitOpen
		}
		b.trial = true
	}
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	b.trial = false

	if success {
		b.failures = 0
		if state != StateClosed {
			b.setState(StateClosed)
		}
		return
	}

	b.failures++
	if state == StateHalfOpen || b.failures >= b.settings.FailureThreshold {
		b.openedAt = b.settings.Now()
		b.setState(StateOpen)
	}
}

// current must be called with mu held.
func (b *Breaker) current() State {
	if b.state == StateOpen && b.settings.Now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.setState(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) setState(state State) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	if state == StateClosed {
		b.failures = 0
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}

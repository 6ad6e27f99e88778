// Package runnertest provides a scripted runner.Runner for tests.
package runnertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
)

// ErrNotInstalled simulates a binary missing from PATH.
var ErrNotInstalled = errors.New("executable file not found in $PATH")

// Response is the scripted result of a command.
type Response struct {
	Out  string
	Err  error
	Exit bool // wrap as a non-zero exit
}

// Call records one invocation.
type Call struct {
	Input string
	Argv  []string
}

// String joins the argv with spaces.
func (c Call) String() string { return strings.Join(c.Argv, " ") }

// Fake matches invocations against prefixes of the joined argv. The longest
// matching prefix wins; unmatched commands succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []Call
	nextPID   int
	Default   *Response
}

// New creates an empty fake.
func New() *Fake {
	return &Fake{responses: make(map[string][]Response), nextPID: 5000}
}

// On scripts responses for commands starting with prefix. Multiple responses
// are consumed in order; the last one repeats.
func (f *Fake) On(prefix string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = append(f.responses[prefix], responses...)
	return f
}

// Calls returns a copy of the recorded invocations.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Commands returns the recorded invocations as strings.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Count returns how many recorded commands start with prefix.
func (f *Fake) Count(prefix string) int {
	n := 0
	for _, cmd := range f.Commands() {
		if strings.HasPrefix(cmd, prefix) {
			n++
		}
	}
	return n
}

// Run implements runner.Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) (string, error) {
	return f.RunInput(ctx, "", name, args...)
}

// RunInput implements runner.Runner.
func (f *Fake) RunInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	argv := append([]string{name}, args...)
	f.mu.Lock()
	f.calls = append(f.calls, Call{Input: input, Argv: argv})
	resp := f.lookup(strings.Join(argv, " "))
	f.mu.Unlock()

	if resp.Exit {
		return resp.Out, fmt.Errorf("%s: %w", name, runner.ErrExit)
	}
	return resp.Out, resp.Err
}

// Spawn implements runner.Runner.
func (f *Fake) Spawn(name string, args ...string) (int, error) {
	argv := append([]string{name}, args...)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Argv: argv})
	resp := f.lookup(strings.Join(argv, " "))
	if resp.Err != nil {
		return 0, resp.Err
	}
	f.nextPID++
	return f.nextPID, nil
}

// lookup must be called with mu held.
func (f *Fake) lookup(cmd string) Response {
	best := ""
	found := false
	for prefix := range f.responses {
		if strings.HasPrefix(cmd, prefix) && len(prefix) >= len(best) {
			best = prefix
			found = true
		}
	}
	if !found {
		if f.Default != nil {
			return *f.Default
		}
		return Response{}
	}

	queue := f.responses[best]
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[best] = queue[1:]
	}
	return resp
}

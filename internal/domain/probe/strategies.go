package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
)

// LsofStrategy queries lsof. lsof exits 1 with no output when nothing matches.
type LsofStrategy struct {
	Runner runner.Runner
}

// Name implements PortStrategy.
func (s LsofStrategy) Name() string { return "lsof" }

// Bound implements PortStrategy.
func (s LsofStrategy) Bound(ctx context.Context, port int) (bool, error) {
	out, err := s.Runner.Run(ctx, "lsof", "-nP", "-t", fmt.Sprintf("-iTCP:%d", port), "-sTCP:LISTEN")
	if err != nil {
		if runner.IsExit(err) && out == "" {
			return false, nil
		}
		return false, err
	}
	return out != "", nil
}

// Listening implements PortStrategy.
func (s LsofStrategy) Listening(ctx context.Context, lo, hi int) (map[int]bool, error) {
	out, err := s.Runner.Run(ctx, "lsof", "-nP", fmt.Sprintf("-iTCP:%d-%d", lo, hi), "-sTCP:LISTEN")
	if err != nil {
		if runner.IsExit(err) && out == "" {
			return map[int]bool{}, nil
		}
		return nil, err
	}

	ports := make(map[int]bool)
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "LISTEN") {
			continue
		}
		for _, field := range strings.Fields(line) {
			if port, ok := portSuffix(field, ":"); ok && port >= lo && port <= hi {
				ports[port] = true
			}
		}
	}
	return ports, nil
}

// SSStrategy queries iproute2's ss (linux).
type SSStrategy struct {
	Runner runner.Runner
}

// Name implements PortStrategy.
func (s SSStrategy) Name() string { return "ss" }

// Bound implements PortStrategy.
func (s SSStrategy) Bound(ctx context.Context, port int) (bool, error) {
	out, err := s.Runner.Run(ctx, "ss", "-tlnH", fmt.Sprintf("sport = :%d", port))
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Listening implements PortStrategy.
func (s SSStrategy) Listening(ctx context.Context, lo, hi int) (map[int]bool, error) {
	out, err := s.Runner.Run(ctx, "ss", "-tlnH")
	if err != nil {
		return nil, err
	}

	ports := make(map[int]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if port, ok := portSuffix(fields[3], ":"); ok && port >= lo && port <= hi {
			ports[port] = true
		}
	}
	return ports, nil
}

// NetstatStrategy queries BSD netstat (darwin), where addresses end in ".port".
type NetstatStrategy struct {
	Runner runner.Runner
}

// Name implements PortStrategy.
func (s NetstatStrategy) Name() string { return "netstat" }

// Bound implements PortStrategy.
func (s NetstatStrategy) Bound(ctx context.Context, port int) (bool, error) {
	ports, err := s.Listening(ctx, port, port)
	if err != nil {
		return false, err
	}
	return ports[port], nil
}

// Listening implements PortStrategy.
func (s NetstatStrategy) Listening(ctx context.Context, lo, hi int) (map[int]bool, error) {
	out, err := s.Runner.Run(ctx, "netstat", "-an", "-p", "tcp")
	if err != nil {
		return nil, err
	}

	ports := make(map[int]bool)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 6 || fields[len(fields)-1] != "LISTEN" {
			continue
		}
		if port, ok := portSuffix(fields[3], "."); ok && port >= lo && port <= hi {
			ports[port] = true
		}
	}
	return ports, nil
}

// SocketStrategy tries to bind the port itself. It needs no external tool.
type SocketStrategy struct {
	Host string
}

// Name implements PortStrategy.
func (s SocketStrategy) Name() string { return "socket" }

// Bound implements PortStrategy.
func (s SocketStrategy) Bound(ctx context.Context, port int) (bool, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.Host, strconv.Itoa(port)))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return true, nil
		}
		return false, err
	}
	ln.Close()
	return false, nil
}

// Listening implements PortStrategy.
func (s SocketStrategy) Listening(ctx context.Context, lo, hi int) (map[int]bool, error) {
	ports := make(map[int]bool)
	for port := lo; port <= hi; port++ {
		bound, err := s.Bound(ctx, port)
		if err != nil {
			return nil, err
		}
		if bound {
			ports[port] = true
		}
	}
	return ports, nil
}

// portSuffix parses the digits after the last sep in an address field.
func portSuffix(field, sep string) (int, bool) {
	idx := strings.LastIndex(field, sep)
	if idx < 0 || idx == len(field)-1 {
		return 0, false
	}
	port, err := strconv.Atoi(field[idx+1:])
	if err != nil || port <= 0 {
		return 0, false
	}
	return port, true
}

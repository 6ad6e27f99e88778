package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
)

// psTable reads the process table from ps and working directories from lsof.
type psTable struct {
	runner runner.Runner
}

func (t psTable) list(ctx context.Context) ([]ProcessInfo, error) {
	out, err := t.runner.Run(ctx, "ps", "-axo", "pid=,ppid=,args=")
	if err != nil {
		return nil, err
	}
	return parsePS(out), nil
}

func (t psTable) cwd(ctx context.Context, pid int) (string, error) {
	out, err := t.runner.Run(ctx, "lsof", "-a", "-p", strconv.Itoa(pid), "-d", "cwd", "-Fn")
	if err != nil {
		if runner.IsExit(err) {
			return "", fmt.Errorf("%w: pid %d", ErrNotFound, pid)
		}
		return "", err
	}

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "n") && len(line) > 1 {
			return line[1:], nil
		}
	}
	return "", fmt.Errorf("%w: no cwd for pid %d", ErrNotFound, pid)
}

func parsePS(out string) []ProcessInfo {
	var procs []ProcessInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		procs = append(procs, ProcessInfo{PID: pid, PPID: ppid, Args: fields[2:]})
	}
	return procs
}

//go:build linux

package probe

import (
	"github.com/prometheus/procfs"

	"github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"
)

func platformBackend(r runner.Runner) (processTable, []PortStrategy) {
	strategies := []PortStrategy{
		LsofStrategy{Runner: r},
		SSStrategy{Runner: r},
		SocketStrategy{},
	}

	table, err := newProcfsTable(procfs.DefaultMountPoint)
	if err != nil {
		return psTable{runner: r}, strategies
	}
	return table, strategies
}

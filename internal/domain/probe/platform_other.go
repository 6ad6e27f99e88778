//go:build !linux && !darwin

package probe

import "github.com/GriffinCanCode/remotehub/internal/infrastructure/runner"

func platformBackend(r runner.Runner) (processTable, []PortStrategy) {
	return psTable{runner: r}, []PortStrategy{
		LsofStrategy{Runner: r},
		SocketStrategy{},
	}
}

//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// detach starts the child in a new session, away from the hub's process group.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

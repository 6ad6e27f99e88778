//go:build !windows

package ttyd

import (
	"errors"

	"golang.org/x/sys/unix"
)

func terminate(pid int) error {
	err := unix.Kill(pid, unix.SIGTERM)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

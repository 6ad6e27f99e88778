//go:build !windows

package main

import (
	"errors"

	"golang.org/x/sys/unix"
)

// terminateHub asks the hub to shut down the same way SIGTERM from a shell would.
func terminateHub(pid int) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		return err
	}
	return nil
}

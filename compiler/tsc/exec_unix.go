//go:build unix

package tsc

import (
	"os/exec"
	"syscall"
)

// setGracefulShutdown makes a cancelled context interrupt tsc with SIGINT.
// SIGKILL follows after WaitDelay.
func setGracefulShutdown(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGINT)
	}
}

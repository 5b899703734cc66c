//go:build !unix

package tsc

import "os/exec"

// setGracefulShutdown is a no-op where SIGINT is not available; cmd.Cancel
// defaults to killing the process.
func setGracefulShutdown(cmd *exec.Cmd) {
	_ = cmd
}

package tsc

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// WaitDelay is the grace period given to tsc to handle the interrupt
// signal before being force-killed.
const WaitDelay = 5 * time.Second

// command creates an exec.Cmd with PATH prepended with binDir and graceful
// shutdown configured.
func command(ctx context.Context, binDir, name string, args ...string) *exec.Cmd {
	env := os.Environ()
	if binDir != "" {
		env = PrependPath(env, binDir)

		// exec.Command resolves the binary using os.Getenv("PATH") at creation
		// time, before cmd.Env takes effect.
		if !strings.ContainsAny(name, `/\`) {
			if binPath := filepath.Join(binDir, name); fileExists(binPath) {
				name = binPath
			}
		}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env
	cmd.WaitDelay = WaitDelay
	setGracefulShutdown(cmd)
	return cmd
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// PrependPath prepends a directory to the PATH in the given environment.
func PrependPath(env []string, dir string) []string {
	result := make([]string, 0, len(env)+1)
	pathSet := false
	for _, e := range env {
		if oldPath, found := strings.CutPrefix(e, "PATH="); found {
			result = append(result, "PATH="+dir+string(os.PathListSeparator)+oldPath)
			pathSet = true
		} else {
			result = append(result, e)
		}
	}
	if !pathSet {
		result = append(result, "PATH="+dir)
	}
	return result
}

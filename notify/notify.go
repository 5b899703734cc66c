// Package notify delivers desktop notifications through the platform's
// command line notifier.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/fredrikaverpil/tswatch"
)

// Timeout bounds how long a single notification may take.
const Timeout = 5 * time.Second

// AppName identifies the sender to the notification daemon.
const AppName = "tswatch"

// Desktop implements tswatch.Notifier.
//
// On Linux it runs notify-send, on macOS osascript. Elsewhere, or when the
// notifier is not installed, notifications are silently dropped.
type Desktop struct {
	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// New returns a Desktop notifier for the current platform.
func New() *Desktop {
	return &Desktop{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Notify implements tswatch.Notifier.
func (d *Desktop) Notify(msg string, opts tswatch.NotifyOptions) error {
	name, args, ok := d.command(msg, opts)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := d.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (d *Desktop) command(msg string, opts tswatch.NotifyOptions) (string, []string, bool) {
	switch d.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		path, err := d.lookPath("notify-send")
		if err != nil {
			return "", nil, false
		}
		urgency := "normal"
		if opts.Priority >= 2 {
			urgency = "critical"
		}
		args := []string{"--app-name", AppName, "--urgency", urgency}
		if icon := icon(opts.Image); icon != "" {
			args = append(args, "--icon", icon)
		}
		return path, append(args, opts.Title, msg), true
	case "darwin":
		path, err := d.lookPath("osascript")
		if err != nil {
			return "", nil, false
		}
		script := fmt.Sprintf("display notification %s with title %s", quote(msg), quote(opts.Title))
		return path, []string{"-e", script}, true
	default:
		return "", nil, false
	}
}

// icon maps an image to a freedesktop icon name.
func icon(image tswatch.Image) string {
	switch image {
	case tswatch.ImageSuccess:
		return "dialog-information"
	case tswatch.ImageFailed:
		return "dialog-error"
	default:
		return ""
	}
}

// quote returns s as an AppleScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

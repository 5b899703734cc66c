package tswatch

import (
	"os"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// NotifyTitle is the title of every system notification.
const NotifyTitle = "TypeScript results"

// Image is the icon hint of a system notification.
type Image string

const (
	ImageSuccess Image = "success"
	ImageFailed  Image = "failed"
)

// NotifyOptions describe a system notification.
type NotifyOptions struct {
	Title    string
	Image    Image
	Priority int
}

// Reporter receives the messages of a build. Errors are never suppressed;
// suppression of success messages is decided by the Runner.
type Reporter interface {
	// Info reports the start of a batch.
	Info(msg string)
	// Success reports a successful batch or removal.
	Success(msg string)
	// Error reports one failed file.
	Error(msg string)
	// Notify sends a system notification.
	Notify(msg string, opts NotifyOptions)
}

// Notifier delivers system notifications, e.g. desktop popups.
type Notifier interface {
	Notify(msg string, opts NotifyOptions) error
}

// Formatter writes build messages to the console.
type Formatter struct {
	out   *Output
	now   func() time.Time
	green *color.Color
	red   *color.Color
}

// NewFormatter returns a Formatter writing to out.
func NewFormatter(out *Output, colored bool) *Formatter {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	if colored {
		green.EnableColor()
		red.EnableColor()
	} else {
		green.DisableColor()
		red.DisableColor()
	}
	return &Formatter{out: out, now: time.Now, green: green, red: red}
}

// Info prints msg as is.
func (f *Formatter) Info(msg string) {
	_, _ = f.out.Println(msg)
}

// Success prints msg in green, prefixed with the wall clock time.
func (f *Formatter) Success(msg string) {
	_, _ = f.out.Println(f.green.Sprint(f.now().Format("03:04:05 PM") + " " + msg))
}

// Error prints msg in red to stderr.
func (f *Formatter) Error(msg string) {
	_, _ = f.out.Errorln(f.red.Sprint(msg))
}

// ColorEnabled reports whether output to f should be colored.
// It respects the NO_COLOR convention (https://no-color.org/).
func ColorEnabled(f *os.File) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// NewReporter combines a console formatter with an optional notifier.
func NewReporter(f *Formatter, n Notifier) Reporter {
	return &consoleReporter{Formatter: f, notifier: n}
}

type consoleReporter struct {
	*Formatter
	notifier Notifier
}

func (r *consoleReporter) Notify(msg string, opts NotifyOptions) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Notify(msg, opts); err != nil {
		_, _ = r.out.Errorln("notification failed:", err)
	}
}

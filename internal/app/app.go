// Package app wires configuration to the compiler, reporter and watcher
// used by the tswatch commands.
package app

import (
	"errors"
	"os"

	"github.com/fredrikaverpil/tswatch"
	"github.com/fredrikaverpil/tswatch/compiler/esbuild"
	"github.com/fredrikaverpil/tswatch/compiler/tsc"
	"github.com/fredrikaverpil/tswatch/config"
	"github.com/fredrikaverpil/tswatch/notify"
	"github.com/fredrikaverpil/tswatch/watch"
)

// Compiler returns the compiler selected by cfg.
func Compiler(cfg config.Config) tswatch.Compiler {
	if cfg.Compiler == config.CompilerTSC {
		return tsc.New(".")
	}
	return esbuild.New()
}

// NewGuard creates a Guard for cfg, reporting to out. System notifications
// are sent unless turned off in cfg.
func NewGuard(cfg config.Config, out *tswatch.Output, colored bool) (*tswatch.Guard, error) {
	var notifier tswatch.Notifier
	if cfg.NotifyEnabled() {
		notifier = notify.New()
	}
	reporter := tswatch.NewReporter(tswatch.NewFormatter(out, colored), notifier)
	return tswatch.New(tswatch.NewRunner(Compiler(cfg), reporter), cfg.Watch, cfg.Options)
}

// WatchConfig returns the watcher config for cfg. Failed batches have
// already been reported by the runner and are not printed again.
func WatchConfig(cfg config.Config, out *tswatch.Output) watch.Config {
	return watch.Config{
		BaseDir:  ".",
		Ignore:   cfg.Ignore,
		Debounce: cfg.Debounce,
		Stderr:   out.Stderr,
		OnError: func(err error) {
			if errors.Is(err, tswatch.ErrTaskFailed) {
				return
			}
			out.Errorln("watch:", err)
		},
	}
}

// Colored reports whether console output should be colored.
func Colored() bool {
	return tswatch.ColorEnabled(os.Stdout)
}

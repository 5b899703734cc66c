package app

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fredrikaverpil/tswatch"
	"github.com/fredrikaverpil/tswatch/compiler/esbuild"
	"github.com/fredrikaverpil/tswatch/compiler/tsc"
	"github.com/fredrikaverpil/tswatch/config"
)

func TestCompiler(t *testing.T) {
	t.Parallel()

	if _, ok := Compiler(config.Config{Compiler: config.CompilerTSC}).(*tsc.Compiler); !ok {
		t.Error("expected tsc compiler")
	}
	if _, ok := Compiler(config.Config{Compiler: config.CompilerESBuild}).(*esbuild.Compiler); !ok {
		t.Error("expected esbuild compiler")
	}
}

func TestNewGuard(t *testing.T) {
	t.Parallel()
	off := false
	cfg := config.Config{
		Options: tswatch.Options{Input: "src"},
		Watch:   []string{`^test/(.+\.ts)$`},
		Notify:  &off,
	}.WithDefaults()

	g, err := NewGuard(cfg, tswatch.DiscardOutput(), false)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(g.Patterns()); n != 2 {
		t.Errorf("expected 2 patterns, got %d", n)
	}
	if g.Options().Output != "src" {
		t.Errorf("Output = %q, want %q", g.Options().Output, "src")
	}
}

func TestWatchConfig_OnError(t *testing.T) {
	t.Parallel()
	var stderr bytes.Buffer
	out := &tswatch.Output{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	cfg := WatchConfig(config.Config{Ignore: []string{"dist/**"}}, out)
	if cfg.BaseDir != "." || len(cfg.Ignore) != 1 {
		t.Errorf("unexpected config %+v", cfg)
	}

	cfg.OnError(fmt.Errorf("batch: %w", tswatch.ErrTaskFailed))
	if stderr.Len() != 0 {
		t.Errorf("expected failed batches to be silent, got %q", stderr.String())
	}

	cfg.OnError(errors.New("too many open files"))
	if got, want := stderr.String(), "watch: too many open files\n"; got != want {
		t.Errorf("stderr = %q, want %q", got, want)
	}
}

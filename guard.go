// Package tswatch compiles TypeScript files as they change.
//
// A host, typically a file watcher, hands batches of changed or removed paths
// to a Guard. The Guard drops paths that are not TypeScript sources, maps
// every remaining file to an output directory using its watch patterns, and
// lets a Runner compile the files one by one, write the JavaScript artifacts
// and report the outcome on the console and as system notifications.
//
// Watch patterns are regular expressions. The first capture group of a
// pattern is the path of the file relative to its input root; that path's
// directory is recreated below the output directory unless shallow mode is
// on. For example, with output "public/js" the pattern
//
//	^app/ts/(.+\.ts)$
//
// compiles app/ts/x/y/a.ts to public/js/x/y/a.js.
package tswatch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrTaskFailed is returned when at least one file of a batch failed.
// Hosts use it to mark their task as failed.
var ErrTaskFailed = errors.New("task has failed")

// Guard connects host events to a Runner.
type Guard struct {
	runner   *Runner
	patterns []*Pattern
	opts     Options
	fsys     fs.FS
}

// New creates a Guard from watch pattern expressions and options.
// When opts.Input is set, a pattern for every .ts file below it is added.
func New(runner *Runner, patterns []string, opts Options) (*Guard, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.WithDefaults()

	compiled, err := CompilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	if opts.Input != "" {
		compiled = append(compiled, InputPattern(opts.Input))
	}

	return &Guard{
		runner:   runner,
		patterns: compiled,
		opts:     opts,
		fsys:     os.DirFS("."),
	}, nil
}

// Options returns the effective options.
func (g *Guard) Options() Options {
	return g.opts
}

// Patterns returns the effective watch patterns.
func (g *Guard) Patterns() []*Pattern {
	return g.patterns
}

// WithOptions returns a copy of the guard sharing its runner, and therefore
// its failure state, with different options.
func (g *Guard) WithOptions(fn func(*Options)) *Guard {
	cp := *g
	fn(&cp.opts)
	return &cp
}

// Start is called once when the host starts.
func (g *Guard) Start(ctx context.Context) error {
	if g.opts.AllOnStart {
		return g.RunAll(ctx)
	}
	return nil
}

// RunAll compiles every watched TypeScript file below the working directory.
func (g *Guard) RunAll(ctx context.Context) error {
	files, err := g.watchedFiles()
	if err != nil {
		return err
	}
	return g.RunOnModifications(ctx, files)
}

// RunOnModifications compiles the changed paths that match a watch pattern.
func (g *Guard) RunOnModifications(ctx context.Context, paths []string) error {
	files := MatchFiles(g.patterns, Clean(paths, false))
	if len(files) == 0 {
		return nil
	}
	_, ok := g.runner.Run(ctx, g.patterns, files, g.opts)
	if !ok {
		return ErrTaskFailed
	}
	return nil
}

// RunOnRemovals deletes the artifacts of removed paths that match a watch
// pattern.
func (g *Guard) RunOnRemovals(_ context.Context, paths []string) error {
	files := MatchFiles(g.patterns, Clean(paths, true))
	if len(files) == 0 {
		return nil
	}
	g.runner.Remove(g.patterns, files, g.opts)
	return nil
}

// CleanAll deletes the artifacts of every watched TypeScript file.
func (g *Guard) CleanAll(ctx context.Context) error {
	files, err := g.watchedFiles()
	if err != nil {
		return err
	}
	return g.RunOnRemovals(ctx, files)
}

func (g *Guard) watchedFiles() ([]string, error) {
	all, err := doublestar.Glob(g.fsys, "**/*"+SourceExt)
	if err != nil {
		return nil, fmt.Errorf("listing TypeScript files: %w", err)
	}
	slices.Sort(all)
	return MatchFiles(g.patterns, all), nil
}

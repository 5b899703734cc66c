// Package watch turns file system events under a directory tree into
// batches of changed and removed paths.
//
// Events are collected until the tree has been quiet for the debounce
// interval. A path is then classified by whether it still exists, so a file
// that is written and deleted within one batch is reported only as removed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the quiet period before a batch is flushed.
const DefaultDebounce = 250 * time.Millisecond

// DefaultIgnore lists the globs that are never watched.
var DefaultIgnore = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swx",
	"**/*~",
	"**/.DS_Store",
}

// Handler receives the batches.
type Handler interface {
	RunOnModifications(ctx context.Context, paths []string) error
	RunOnRemovals(ctx context.Context, paths []string) error
}

// Config configures a Watcher.
type Config struct {
	// BaseDir is the root of the watched tree. Paths handed to the Handler
	// are relative to it and slash separated.
	BaseDir string
	// Ignore holds doublestar globs, matched against relative paths, in
	// addition to DefaultIgnore.
	Ignore []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnError is called with errors from the Handler and from the
	// underlying watcher. By default they are printed to Stderr.
	OnError func(error)
	// Stderr defaults to os.Stderr.
	Stderr io.Writer
}

// WithDefaults returns a copy of the config with zero fields set.
func (c Config) WithDefaults() Config {
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}
	if c.OnError == nil {
		stderr := c.Stderr
		c.OnError = func(err error) {
			fmt.Fprintf(stderr, "watch: %v\n", err)
		}
	}
	c.Ignore = append(slices.Clone(DefaultIgnore), c.Ignore...)
	return c
}

// Batch is a set of paths that changed during one debounce interval.
type Batch struct {
	Changed []string
	Removed []string
}

// Empty reports whether the batch holds no paths.
func (b Batch) Empty() bool {
	return len(b.Changed) == 0 && len(b.Removed) == 0
}

// Merge folds a later batch into b. A path keeps only its latest
// classification.
func (b Batch) Merge(next Batch) Batch {
	var out Batch
	for _, p := range b.Changed {
		if !slices.Contains(next.Removed, p) && !slices.Contains(next.Changed, p) {
			out.Changed = append(out.Changed, p)
		}
	}
	for _, p := range b.Removed {
		if !slices.Contains(next.Changed, p) && !slices.Contains(next.Removed, p) {
			out.Removed = append(out.Removed, p)
		}
	}
	out.Changed = append(out.Changed, next.Changed...)
	out.Removed = append(out.Removed, next.Removed...)
	return out
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	cfg     Config
	handler Handler
	fsw     *fsnotify.Watcher
}

// New creates a Watcher and registers every directory under cfg.BaseDir
// that is not ignored.
func New(cfg Config, h Handler) (*Watcher, error) {
	cfg = cfg.WithDefaults()
	for _, pattern := range cfg.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to start watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, handler: h, fsw: fsw}
	if err := w.addTree(cfg.BaseDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close releases the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run delivers batches to the Handler until ctx is done. Batches are
// handled one at a time; events arriving meanwhile are merged into the
// next batch.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	batches := make(chan Batch)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.collect(ctx, batches) })
	g.Go(func() error { return w.dispatch(ctx, batches) })
	return g.Wait()
}

func (w *Watcher) collect(ctx context.Context, batches chan<- Batch) error {
	var (
		pending []string
		ready   Batch
		flush   <-chan time.Time
		out     chan<- Batch
	)

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.handleEvent(ev)
			if !ok {
				break
			}
			if !slices.Contains(pending, rel) {
				pending = append(pending, rel)
			}
			if flush == nil {
				flush = time.After(w.cfg.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.OnError(err)
		case <-flush:
			flush = nil
			ready = ready.Merge(w.classify(pending))
			pending = nil
			if !ready.Empty() {
				out = batches
			}
		case out <- ready:
			ready = Batch{}
			out = nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, batches <-chan Batch) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case b := <-batches:
			if len(b.Removed) > 0 {
				if err := w.handler.RunOnRemovals(ctx, b.Removed); err != nil {
					w.cfg.OnError(err)
				}
			}
			if len(b.Changed) > 0 {
				if err := w.handler.RunOnModifications(ctx, b.Changed); err != nil {
					w.cfg.OnError(err)
				}
			}
		}
	}
}

// handleEvent returns the relative path an event refers to, and false when
// the event should not be batched. New directories are added to the watch.
func (w *Watcher) handleEvent(ev fsnotify.Event) (string, bool) {
	if ev.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := w.rel(ev.Name)
	if err != nil || w.ignored(rel) {
		return "", false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.cfg.OnError(err)
			}
			return "", false
		}
	}
	return rel, true
}

// classify splits paths into those that still exist and those that do not.
func (w *Watcher) classify(paths []string) Batch {
	var b Batch
	for _, p := range paths {
		info, err := os.Stat(filepath.Join(w.cfg.BaseDir, filepath.FromSlash(p)))
		switch {
		case err == nil && info.IsDir():
		case err == nil:
			b.Changed = append(b.Changed, p)
		case errors.Is(err, fs.ErrNotExist):
			b.Removed = append(b.Removed, p)
		}
	}
	return b
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := w.rel(path); err == nil && rel != "." && w.ignoredDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, error) {
	rel, err := filepath.Rel(w.cfg.BaseDir, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// ignored matches rel against the ignore globs.
func (w *Watcher) ignored(rel string) bool {
	for _, pattern := range w.cfg.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// ignoredDir is like ignored, but also excludes dir when everything below
// it is ignored.
func (w *Watcher) ignoredDir(rel string) bool {
	return w.ignored(rel) || w.ignored(rel+"/_")
}

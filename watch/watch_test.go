package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestBatch_Merge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Batch
		want Batch
	}{
		{
			name: "disjoint",
			a:    Batch{Changed: []string{"a.ts"}},
			b:    Batch{Removed: []string{"b.ts"}},
			want: Batch{Changed: []string{"a.ts"}, Removed: []string{"b.ts"}},
		},
		{
			name: "removed after change",
			a:    Batch{Changed: []string{"a.ts", "b.ts"}},
			b:    Batch{Removed: []string{"a.ts"}},
			want: Batch{Changed: []string{"b.ts"}, Removed: []string{"a.ts"}},
		},
		{
			name: "recreated after removal",
			a:    Batch{Removed: []string{"a.ts"}},
			b:    Batch{Changed: []string{"a.ts"}},
			want: Batch{Changed: []string{"a.ts"}},
		},
		{
			name: "changed twice",
			a:    Batch{Changed: []string{"a.ts"}},
			b:    Batch{Changed: []string{"a.ts"}},
			want: Batch{Changed: []string{"a.ts"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.a.Merge(tt.b)
			if !slices.Equal(got.Changed, tt.want.Changed) || !slices.Equal(got.Removed, tt.want.Removed) {
				t.Errorf("Merge() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{Ignore: []string{"dist/**"}}.WithDefaults()
	if cfg.BaseDir != "." {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, ".")
	}
	if cfg.Debounce != DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", cfg.Debounce, DefaultDebounce)
	}
	if cfg.OnError == nil || cfg.Stderr == nil {
		t.Error("expected error reporting to be set")
	}
	if len(cfg.Ignore) != len(DefaultIgnore)+1 || cfg.Ignore[len(cfg.Ignore)-1] != "dist/**" {
		t.Errorf("Ignore = %v", cfg.Ignore)
	}
}

func TestNew_InvalidIgnore(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"[a"}}, &recordingHandler{}); err == nil {
		t.Error("expected error for invalid ignore pattern")
	}
}

func TestWatcher_Ignored(t *testing.T) {
	t.Parallel()

	w, err := New(Config{BaseDir: t.TempDir(), Ignore: []string{"dist/**"}}, &recordingHandler{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })

	tests := []struct {
		rel  string
		want bool
	}{
		{rel: "src/a.ts", want: false},
		{rel: ".git/HEAD", want: true},
		{rel: "web/node_modules/x/index.ts", want: true},
		{rel: "src/a.ts.swp", want: true},
		{rel: "src/a.ts~", want: true},
		{rel: "dist/a.js", want: true},
	}
	for _, tt := range tests {
		if got := w.ignored(tt.rel); got != tt.want {
			t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
	if !w.ignoredDir("node_modules") {
		t.Error("expected node_modules to be skipped")
	}
}

func TestWatcher_Classify(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.ts"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{BaseDir: dir}, &recordingHandler{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })

	got := w.classify([]string{"a.ts", "gone.ts", "sub"})
	if !slices.Equal(got.Changed, []string{"a.ts"}) {
		t.Errorf("Changed = %v, want [a.ts]", got.Changed)
	}
	if !slices.Equal(got.Removed, []string{"gone.ts"}) {
		t.Errorf("Removed = %v, want [gone.ts]", got.Removed)
	}
}

type recordingHandler struct {
	mu       sync.Mutex
	modified []string
	removed  []string
	notify   chan struct{}
}

func (h *recordingHandler) RunOnModifications(_ context.Context, paths []string) error {
	h.mu.Lock()
	h.modified = append(h.modified, paths...)
	h.mu.Unlock()
	h.signal()
	return nil
}

func (h *recordingHandler) RunOnRemovals(_ context.Context, paths []string) error {
	h.mu.Lock()
	h.removed = append(h.removed, paths...)
	h.mu.Unlock()
	h.signal()
	return nil
}

func (h *recordingHandler) signal() {
	if h.notify == nil {
		return
	}
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

func (h *recordingHandler) has(modified, removed string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return (modified == "" || slices.Contains(h.modified, modified)) &&
		(removed == "" || slices.Contains(h.removed, removed))
}

func (h *recordingHandler) waitFor(t *testing.T, modified, removed string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !h.has(modified, removed) {
		select {
		case <-h.notify:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for modified=%q removed=%q", modified, removed)
		}
	}
}

func TestWatcher_Run(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	h := &recordingHandler{notify: make(chan struct{}, 1)}

	w, err := New(Config{BaseDir: dir, Debounce: 20 * time.Millisecond}, h)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	file := filepath.Join(dir, "src", "a.ts")
	if err := os.WriteFile(file, []byte("let a = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.waitFor(t, "src/a.ts", "")

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	h.waitFor(t, "", "src/a.ts")
}

func TestWatcher_RunNewDirectory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	h := &recordingHandler{notify: make(chan struct{}, 1)}

	w, err := New(Config{BaseDir: dir, Debounce: 20 * time.Millisecond}, h)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	if err := os.Mkdir(filepath.Join(dir, "lib"), 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the new directory.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := os.WriteFile(filepath.Join(dir, "lib", "b.ts"), nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if h.has("lib/b.ts", "") {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("timed out waiting for lib/b.ts")
}

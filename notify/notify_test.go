package notify

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/fredrikaverpil/tswatch"
)

func fakeDesktop(goos string, installed bool) (*Desktop, *[][]string) {
	var calls [][]string
	d := &Desktop{
		goos: goos,
		lookPath: func(name string) (string, error) {
			if !installed {
				return "", errors.New("not found")
			}
			return "/usr/bin/" + name, nil
		},
		run: func(_ context.Context, name string, args ...string) error {
			calls = append(calls, append([]string{name}, args...))
			return nil
		},
	}
	return d, &calls
}

func TestNotify_Linux(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts tswatch.NotifyOptions
		want []string
	}{
		{
			name: "success",
			opts: tswatch.NotifyOptions{Title: "TypeScript results", Image: tswatch.ImageSuccess},
			want: []string{
				"/usr/bin/notify-send", "--app-name", "tswatch", "--urgency", "normal",
				"--icon", "dialog-information", "TypeScript results", "done",
			},
		},
		{
			name: "failure is critical",
			opts: tswatch.NotifyOptions{Title: "TypeScript results", Image: tswatch.ImageFailed, Priority: 2},
			want: []string{
				"/usr/bin/notify-send", "--app-name", "tswatch", "--urgency", "critical",
				"--icon", "dialog-error", "TypeScript results", "done",
			},
		},
		{
			name: "no image",
			opts: tswatch.NotifyOptions{Title: "T"},
			want: []string{"/usr/bin/notify-send", "--app-name", "tswatch", "--urgency", "normal", "T", "done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, calls := fakeDesktop("linux", true)
			if err := d.Notify("done", tt.opts); err != nil {
				t.Fatal(err)
			}
			if len(*calls) != 1 || !slices.Equal((*calls)[0], tt.want) {
				t.Errorf("calls = %q, want [%q]", *calls, tt.want)
			}
		})
	}
}

func TestNotify_Darwin(t *testing.T) {
	t.Parallel()
	d, calls := fakeDesktop("darwin", true)

	if err := d.Notify(`a.ts: "x" expected`, tswatch.NotifyOptions{Title: "TypeScript results"}); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"/usr/bin/osascript", "-e",
		`display notification "a.ts: \"x\" expected" with title "TypeScript results"`,
	}
	if len(*calls) != 1 || !slices.Equal((*calls)[0], want) {
		t.Errorf("calls = %q, want [%q]", *calls, want)
	}
}

func TestNotify_Unavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		goos      string
		installed bool
	}{
		{name: "not installed", goos: "linux", installed: false},
		{name: "unsupported platform", goos: "windows", installed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d, calls := fakeDesktop(tt.goos, tt.installed)
			if err := d.Notify("done", tswatch.NotifyOptions{}); err != nil {
				t.Errorf("Notify() error = %v, want nil", err)
			}
			if len(*calls) != 0 {
				t.Errorf("expected no calls, got %q", *calls)
			}
		})
	}
}

func TestNotify_RunError(t *testing.T) {
	t.Parallel()
	d, _ := fakeDesktop("linux", true)
	d.run = func(context.Context, string, ...string) error { return errors.New("boom") }

	if err := d.Notify("done", tswatch.NotifyOptions{}); err == nil {
		t.Error("expected error")
	}
}

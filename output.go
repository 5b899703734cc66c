package tswatch

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Output holds stdout and stderr writers for console output.
// It is passed down to the formatter and the compilers instead of a global logger.
type Output struct {
	Stdout io.Writer
	Stderr io.Writer
}

// StdOutput returns an Output that writes to os.Stdout and os.Stderr.
func StdOutput() *Output {
	return &Output{Stdout: os.Stdout, Stderr: os.Stderr}
}

// DiscardOutput returns an Output that drops everything.
func DiscardOutput() *Output {
	return &Output{Stdout: io.Discard, Stderr: io.Discard}
}

// Printf formats and prints to stdout.
func (o *Output) Printf(format string, a ...any) (int, error) {
	return fmt.Fprintf(o.Stdout, format, a...)
}

// Println prints to stdout with a newline.
func (o *Output) Println(a ...any) (int, error) {
	return fmt.Fprintln(o.Stdout, a...)
}

// Errorln prints to stderr with a newline.
func (o *Output) Errorln(a ...any) (int, error) {
	return fmt.Fprintln(o.Stderr, a...)
}

// Locked returns an Output whose writers share one mutex.
// The watcher's dispatch goroutine and the host may both print.
func (o *Output) Locked() *Output {
	mu := &sync.Mutex{}
	return &Output{
		Stdout: &lockedWriter{mu: mu, w: o.Stdout},
		Stderr: &lockedWriter{mu: mu, w: o.Stderr},
	}
}

// lockedWriter wraps a writer with a mutex for safe concurrent writes.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (n int, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

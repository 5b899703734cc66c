package tswatch

import "context"

// CompileOptions are passed through to a Compiler for one source file.
// Exactly one of OutputFile and OutputDir is set: OutputFile when
// dependencies are concatenated into a single artifact, OutputDir otherwise.
type CompileOptions struct {
	SourceMap     bool
	SourceRoot    string
	OutputFile    string
	OutputDir     string
	ModuleKind    string
	LanguageLevel string
}

// Generated is the output of a successful compilation.
// SourceMap is empty unless CompileOptions.SourceMap was set.
type Generated struct {
	Code      string
	SourceMap string
}

// Compiler turns one TypeScript file into JavaScript.
// A compilation failure is returned as a *CompileError; any other error is
// treated the same way by the Runner.
type Compiler interface {
	Compile(ctx context.Context, file string, opts CompileOptions) (Generated, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, file string, opts CompileOptions) (Generated, error)

// Compile calls f.
func (f CompilerFunc) Compile(ctx context.Context, file string, opts CompileOptions) (Generated, error) {
	return f(ctx, file, opts)
}

// CompileError is a diagnostic reported by the compiler for a source file.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string {
	return e.Message
}

// CompileResult is the outcome for one source file in a batch.
// A failed result carries Message and no artifact unless a fallback
// artifact was written.
type CompileResult struct {
	Source    string
	Artifact  string
	SourceMap string
	Message   string
}

// Failed reports whether the file failed to compile or to be written.
func (r CompileResult) Failed() bool {
	return r.Message != ""
}

// Paths returns the non-empty artifact paths of the result.
func (r CompileResult) Paths() []string {
	var paths []string
	for _, p := range []string{r.Artifact, r.SourceMap} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// Package tsc compiles TypeScript by running the tsc command line compiler.
//
// Each compilation emits into a scratch directory which is removed
// afterwards; the generated code and source map are handed back to the
// caller, which decides where they end up.
package tsc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fredrikaverpil/tswatch"
)

// DefaultBinary is the executable name used when Compiler.Binary is empty.
const DefaultBinary = "tsc"

// Compiler implements tswatch.Compiler on top of tsc.
type Compiler struct {
	// Binary is the tsc executable. Defaults to DefaultBinary.
	Binary string
	// Dir is the project directory, used as tsc's root directory. A tsc
	// found in Dir/node_modules/.bin takes precedence over one on PATH.
	Dir string
}

// New returns a Compiler that prefers the tsc installed under dir.
func New(dir string) *Compiler {
	return &Compiler{Dir: dir}
}

func (c *Compiler) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return DefaultBinary
}

func (c *Compiler) rootDir() string {
	if c.Dir == "" {
		return "."
	}
	return c.Dir
}

func (c *Compiler) binDir() string {
	if c.Dir == "" {
		return ""
	}
	return filepath.Join(c.Dir, "node_modules", ".bin")
}

// Compile implements tswatch.Compiler.
func (c *Compiler) Compile(ctx context.Context, file string, opts tswatch.CompileOptions) (tswatch.Generated, error) {
	tmp, err := os.MkdirTemp("", "tswatch-tsc-*")
	if err != nil {
		return tswatch.Generated{}, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	emitted, err := emittedPath(file, tmp, c.rootDir(), opts)
	if err != nil {
		return tswatch.Generated{}, err
	}

	var out bytes.Buffer
	cmd := command(ctx, c.binDir(), c.binary(), Args(file, tmp, c.rootDir(), opts)...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(out.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return tswatch.Generated{}, &tswatch.CompileError{Message: msg}
		}
		return tswatch.Generated{}, fmt.Errorf("running %s: %w", c.binary(), err)
	}

	code, err := os.ReadFile(emitted)
	if err != nil {
		return tswatch.Generated{}, fmt.Errorf("reading tsc output: %w", err)
	}
	gen := tswatch.Generated{Code: stripMapReference(string(code))}
	if opts.SourceMap {
		sourceMap, err := os.ReadFile(emitted + tswatch.MapExt)
		if err != nil {
			return tswatch.Generated{}, fmt.Errorf("reading tsc source map: %w", err)
		}
		gen.SourceMap = string(sourceMap)
	}
	return gen, nil
}

// Args builds the tsc command line compiling file into dir. Without an
// output file, the layout below dir mirrors the layout below rootDir.
func Args(file, dir, rootDir string, opts tswatch.CompileOptions) []string {
	args := []string{file}
	if opts.OutputFile != "" {
		args = append(args, "--outFile", filepath.Join(dir, filepath.Base(opts.OutputFile)))
	} else {
		args = append(args, "--outDir", dir, "--rootDir", rootDir)
	}
	if opts.SourceMap {
		args = append(args, "--sourceMap")
		if opts.SourceRoot != "" {
			args = append(args, "--sourceRoot", opts.SourceRoot)
		}
	}
	if opts.ModuleKind != "" {
		args = append(args, "--module", opts.ModuleKind)
	}
	if opts.LanguageLevel != "" {
		args = append(args, "--target", opts.LanguageLevel)
	}
	return args
}

// emittedPath is where tsc writes the code for file when invoked with Args.
func emittedPath(file, dir, rootDir string, opts tswatch.CompileOptions) (string, error) {
	if opts.OutputFile != "" {
		return filepath.Join(dir, filepath.Base(opts.OutputFile)), nil
	}
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return "", fmt.Errorf("resolving root dir: %w", err)
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", file, err)
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &tswatch.CompileError{Message: fmt.Sprintf("%s is outside the project directory %s", file, rootDir)}
	}
	return filepath.Join(dir, strings.TrimSuffix(rel, tswatch.SourceExt)+tswatch.TargetExt), nil
}

// stripMapReference drops the sourceMappingURL comment tsc appends.
func stripMapReference(code string) string {
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "//# sourceMappingURL=") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

package tswatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Runner compiles batches of TypeScript files and reports the outcome.
// It remembers whether the previous batch failed, so that the first
// successful batch after a failure is announced even with HideSuccess.
//
// Batches must not overlap: Run and Remove are meant to be called
// sequentially by a single host.
type Runner struct {
	compiler Compiler
	reporter Reporter

	mu            sync.Mutex
	lastRunFailed bool
}

// NewRunner creates a Runner.
func NewRunner(compiler Compiler, reporter Reporter) *Runner {
	return &Runner{compiler: compiler, reporter: reporter}
}

// LastRunFailed reports whether the most recent batch had errors.
func (r *Runner) LastRunFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRunFailed
}

func (r *Runner) setLastRunFailed(failed bool) {
	r.mu.Lock()
	r.lastRunFailed = failed
	r.mu.Unlock()
}

// Run compiles files into the directories implied by patterns.
// Every file is processed even when earlier ones fail. It returns the
// generated (or, with VerifyOnly, verified) artifact paths and whether
// every file succeeded.
func (r *Runner) Run(ctx context.Context, patterns []*Pattern, files []string, opts Options) ([]string, bool) {
	r.notifyStart(files, opts)
	changed, errs := r.compileFiles(ctx, patterns, files, opts)
	r.notifyResult(changed, errs, opts)
	return changed, len(errs) == 0
}

// Remove deletes the artifacts previously generated for files, along with
// their source maps. It returns the removed paths.
func (r *Runner) Remove(patterns []*Pattern, files []string, opts Options) []string {
	var removed []string
	for _, group := range GroupByOutputDirectory(patterns, files, opts) {
		for _, file := range group.Files {
			artifact := ArtifactPath(file, group.Dir)
			if !fileExists(artifact) {
				continue
			}
			for _, p := range []string{artifact, artifact + MapExt} {
				if p != artifact && !fileExists(p) {
					continue
				}
				if err := os.Remove(p); err != nil {
					r.reporter.Error(fmt.Sprintf("%s: %v", p, err))
					continue
				}
				removed = append(removed, p)
			}
		}
	}

	if len(removed) > 0 {
		msg := "Removed " + strings.Join(removed, ", ")
		r.reporter.Success(msg)
		r.reporter.Notify(msg, NotifyOptions{Title: NotifyTitle, Image: ImageSuccess})
	}
	return removed
}

func (r *Runner) notifyStart(files []string, opts Options) {
	verb := "Compile "
	if opts.VerifyOnly {
		verb = "Verify "
	}
	r.reporter.Info(verb + strings.Join(files, ", "))
}

func (r *Runner) compileFiles(ctx context.Context, patterns []*Pattern, files []string, opts Options) ([]string, []string) {
	var changed, errs []string
	for _, group := range GroupByOutputDirectory(patterns, files, opts) {
		for _, file := range group.Files {
			res := r.compileFile(ctx, file, group.Dir, opts)
			if !res.Failed() {
				changed = append(changed, res.Paths()...)
				continue
			}

			errs = append(errs, res.Message)
			r.reporter.Error(res.Message)

			if !opts.ErrorFallback {
				continue
			}
			fallback, err := writeFallback(res.Message, file, group.Dir, opts)
			if err != nil {
				msg := fmt.Sprintf("%s: %v", file, err)
				errs = append(errs, msg)
				r.reporter.Error(msg)
				continue
			}
			changed = append(changed, fallback)
		}
	}
	return changed, errs
}

// compileFile compiles and persists one file. Write failures are reported
// exactly like compile failures.
func (r *Runner) compileFile(ctx context.Context, file, dir string, opts Options) CompileResult {
	artifact := ArtifactPath(file, dir)

	copts := CompileOptions{
		SourceMap:     opts.SourceMap,
		SourceRoot:    opts.SourceRoot,
		ModuleKind:    opts.ModuleKind,
		LanguageLevel: opts.LanguageLevel,
	}
	if opts.Concatenate {
		copts.OutputFile = artifact
	} else {
		copts.OutputDir = filepath.Dir(artifact)
	}

	gen, err := r.compiler.Compile(ctx, file, copts)
	if err != nil {
		return CompileResult{Source: file, Message: file + ": " + err.Error()}
	}

	res := CompileResult{Source: file, Artifact: artifact}
	if opts.SourceMap {
		res.SourceMap = artifact + MapExt
	}
	if opts.VerifyOnly {
		return res
	}
	if err := writeArtifact(res, gen); err != nil {
		return CompileResult{Source: file, Message: fmt.Sprintf("%s: %v", file, err)}
	}
	return res
}

// writeArtifact writes the generated code and, when res names one, the
// source map with a reference comment appended to the code.
func writeArtifact(res CompileResult, gen Generated) error {
	code := gen.Code
	if res.SourceMap != "" {
		code += "\n/*\n//# sourceMappingURL=" + filepath.Base(res.SourceMap) + "\n*/\n"
	}
	if err := writeFile(res.Artifact, code); err != nil {
		return err
	}
	if res.SourceMap != "" {
		return writeFile(res.SourceMap, gen.SourceMap)
	}
	return nil
}

// writeFallback writes a script throwing msg in place of the artifact of file.
func writeFallback(msg, file, dir string, opts Options) (string, error) {
	artifact := ArtifactPath(file, dir)
	if opts.VerifyOnly {
		return artifact, nil
	}
	if err := writeFile(artifact, FallbackScript(msg)); err != nil {
		return "", err
	}
	return artifact, nil
}

// FallbackScript returns JavaScript that throws msg when executed.
func FallbackScript(msg string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// A string always encodes.
	_ = enc.Encode(msg)
	return "throw " + strings.TrimSuffix(buf.String(), "\n") + ";"
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (r *Runner) notifyResult(changed, errs []string, opts Options) {
	if len(errs) > 0 {
		r.setLastRunFailed(true)
		r.reporter.Notify(strings.Join(errs, "\n"), NotifyOptions{
			Title:    NotifyTitle,
			Image:    ImageFailed,
			Priority: 2,
		})
		return
	}

	if opts.HideSuccess && !r.LastRunFailed() {
		return
	}
	r.setLastRunFailed(false)

	verb := "generated"
	if opts.VerifyOnly {
		verb = "verified"
	}
	msg := fmt.Sprintf("Successfully %s %s", verb, strings.Join(changed, ", "))
	r.reporter.Success(msg)
	r.reporter.Notify(msg, NotifyOptions{Title: NotifyTitle, Image: ImageSuccess})
}

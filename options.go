package tswatch

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Options is the configuration snapshot for a compile or removal run.
// The YAML keys form the user-facing configuration surface.
type Options struct {
	// Input is the source root. When set, a default watch pattern for every
	// .ts file below it is added and Output defaults to Input.
	Input string `yaml:"input"`

	// Output is the destination root. Empty means next to each source file.
	Output string `yaml:"output"`

	// Shallow writes every artifact directly into Output, ignoring nesting.
	Shallow bool `yaml:"shallow"`

	// HideSuccess suppresses success notifications, except for the first
	// successful run after a failed one.
	HideSuccess bool `yaml:"hideSuccess"`

	// ErrorFallback writes a placeholder script that throws the compile error.
	ErrorFallback bool `yaml:"errorToFallback"`

	// AllOnStart compiles every matching file when the guard starts.
	AllOnStart bool `yaml:"allOnStart"`

	// SourceMap also writes a .js.map file and a sourceMappingURL comment.
	SourceMap bool `yaml:"sourceMap"`

	// Concatenate bundles dependencies into a single output file.
	Concatenate bool `yaml:"concatenate"`

	// SourceRoot overrides the sourceRoot field of generated source maps.
	SourceRoot string `yaml:"sourceRoot"`

	// ModuleKind and LanguageLevel are passed through to the compiler.
	ModuleKind    string `yaml:"targetModuleKind"`
	LanguageLevel string `yaml:"targetLanguageLevel"`

	// VerifyOnly compiles without persisting any artifact.
	VerifyOnly bool `yaml:"verifyOnly"`
}

// WithDefaults returns a copy of the options with default values applied.
func (o Options) WithDefaults() Options {
	if o.Input != "" {
		o.Input = filepath.ToSlash(filepath.Clean(o.Input))
		if o.Output == "" {
			o.Output = o.Input
		}
	}
	return o
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	paths := []struct{ name, value string }{
		{"input", o.Input},
		{"output", o.Output},
		{"sourceRoot", o.SourceRoot},
	}
	for _, p := range paths {
		if strings.ContainsRune(p.value, 0) {
			return fmt.Errorf("option %s: path contains a NUL byte", p.name)
		}
	}
	if strings.ContainsAny(o.Input, "*?[{") {
		return fmt.Errorf("option input: %q must be a directory, not a glob", o.Input)
	}
	if o.Input != "" {
		in := filepath.ToSlash(filepath.Clean(o.Input))
		if filepath.IsAbs(o.Input) || strings.HasPrefix(in, "/") || in == ".." || strings.HasPrefix(in, "../") {
			return fmt.Errorf("option input: %q must be relative to the project directory", o.Input)
		}
	}
	return nil
}

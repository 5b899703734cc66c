// Package config loads the tswatch.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fredrikaverpil/tswatch"
	"github.com/fredrikaverpil/tswatch/compiler/esbuild"
	"github.com/fredrikaverpil/tswatch/watch"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "tswatch.yaml"

// Compiler names.
const (
	CompilerESBuild = "esbuild"
	CompilerTSC     = "tsc"
)

// Config is the content of a configuration file.
//
// Example:
//
//	input: src
//	output: lib
//	sourceMap: true
//	targetModuleKind: commonjs
//	watch:
//	  - ^test/(.+\.ts)$
//	ignore:
//	  - dist/**
type Config struct {
	tswatch.Options `yaml:",inline"`

	// Watch holds additional watch patterns.
	Watch []string `yaml:"watch"`
	// Ignore holds globs that are never watched.
	Ignore []string `yaml:"ignore"`
	// Debounce is the quiet period before a batch of changes is handled.
	Debounce time.Duration `yaml:"debounce"`
	// Compiler is CompilerESBuild or CompilerTSC.
	Compiler string `yaml:"compiler"`
	// Notify toggles system notifications. Defaults to true.
	Notify *bool `yaml:"notify"`
}

// Load reads and validates the configuration file at path, or DefaultFile
// when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document, applies defaults and validates
// the result. Unknown keys are an error.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefaults returns a copy of the config with defaults applied.
func (c Config) WithDefaults() Config {
	c.Options = c.Options.WithDefaults()
	if c.Compiler == "" {
		c.Compiler = CompilerESBuild
	}
	if c.Debounce <= 0 {
		c.Debounce = watch.DefaultDebounce
	}
	if c.Notify == nil {
		enabled := true
		c.Notify = &enabled
	}
	return c
}

// Validate checks the config for errors.
func (c Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if len(c.Watch) == 0 && c.Input == "" {
		return errors.New("nothing to watch: set input or watch")
	}
	if _, err := tswatch.CompilePatterns(c.Watch); err != nil {
		return err
	}
	switch c.Compiler {
	case CompilerESBuild:
		if err := esbuild.Validate(c.ModuleKind, c.LanguageLevel); err != nil {
			return err
		}
	case CompilerTSC:
	default:
		return fmt.Errorf("unknown compiler %q, want %q or %q", c.Compiler, CompilerESBuild, CompilerTSC)
	}
	return nil
}

// NotifyEnabled reports whether system notifications are on.
func (c Config) NotifyEnabled() bool {
	return c.Notify == nil || *c.Notify
}

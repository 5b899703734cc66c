// Package esbuild compiles TypeScript in-process with esbuild.
package esbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/fredrikaverpil/tswatch"
)

var formats = map[string]api.Format{
	"":         api.FormatDefault,
	"commonjs": api.FormatCommonJS,
	"cjs":      api.FormatCommonJS,
	"esm":      api.FormatESModule,
	"es6":      api.FormatESModule,
	"es2015":   api.FormatESModule,
	"esnext":   api.FormatESModule,
	"iife":     api.FormatIIFE,
}

var targets = map[string]api.Target{
	"":       api.DefaultTarget,
	"es5":    api.ES5,
	"es6":    api.ES2015,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Validate reports whether esbuild supports the module kind and language level.
func Validate(moduleKind, languageLevel string) error {
	_, _, err := resolve(moduleKind, languageLevel)
	return err
}

func resolve(moduleKind, languageLevel string) (api.Format, api.Target, error) {
	format, ok := formats[strings.ToLower(moduleKind)]
	if !ok {
		return 0, 0, fmt.Errorf("esbuild: unsupported module kind %q", moduleKind)
	}
	target, ok := targets[strings.ToLower(languageLevel)]
	if !ok {
		return 0, 0, fmt.Errorf("esbuild: unsupported language level %q", languageLevel)
	}
	return format, target, nil
}

// Compiler implements tswatch.Compiler. Single files are transformed on
// their own; with an output file, the entry point is bundled together with
// its imports.
type Compiler struct{}

// New returns an esbuild compiler.
func New() *Compiler {
	return &Compiler{}
}

// Compile implements tswatch.Compiler.
func (c *Compiler) Compile(_ context.Context, file string, opts tswatch.CompileOptions) (tswatch.Generated, error) {
	format, target, err := resolve(opts.ModuleKind, opts.LanguageLevel)
	if err != nil {
		return tswatch.Generated{}, err
	}
	sourcemap := api.SourceMapNone
	if opts.SourceMap {
		sourcemap = api.SourceMapExternal
	}

	if opts.OutputFile != "" {
		return bundle(file, opts, format, target, sourcemap)
	}
	return transform(file, opts, format, target, sourcemap)
}

func transform(file string, opts tswatch.CompileOptions, format api.Format, target api.Target, sourcemap api.SourceMap) (tswatch.Generated, error) {
	src, err := os.ReadFile(file)
	if err != nil {
		return tswatch.Generated{}, &tswatch.CompileError{Message: err.Error()}
	}

	res := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderTS,
		Format:     format,
		Target:     target,
		Sourcemap:  sourcemap,
		SourceRoot: opts.SourceRoot,
		Sourcefile: sourceName(file, opts.OutputDir),
		LogLevel:   api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return tswatch.Generated{}, &tswatch.CompileError{Message: formatMessages(res.Errors)}
	}
	return tswatch.Generated{Code: string(res.Code), SourceMap: string(res.Map)}, nil
}

func bundle(file string, opts tswatch.CompileOptions, format api.Format, target api.Target, sourcemap api.SourceMap) (tswatch.Generated, error) {
	res := api.Build(api.BuildOptions{
		EntryPoints: []string{file},
		Bundle:      true,
		Write:       false,
		Outfile:     opts.OutputFile,
		Format:      format,
		Target:      target,
		Sourcemap:   sourcemap,
		SourceRoot:  opts.SourceRoot,
		LogLevel:    api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return tswatch.Generated{}, &tswatch.CompileError{Message: formatMessages(res.Errors)}
	}

	var gen tswatch.Generated
	for _, out := range res.OutputFiles {
		if strings.HasSuffix(out.Path, tswatch.MapExt) {
			gen.SourceMap = string(out.Contents)
		} else {
			gen.Code = string(out.Contents)
		}
	}
	return gen, nil
}

// sourceName is the name recorded in the source map: the path of the
// source relative to the directory holding the map.
func sourceName(file, outDir string) string {
	if outDir == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(outDir, file)
	if err != nil {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}

func formatMessages(msgs []api.Message) string {
	parts := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Location == nil {
			parts = append(parts, m.Text)
			continue
		}
		parts = append(parts, fmt.Sprintf("line %d, column %d: %s", m.Location.Line, m.Location.Column, m.Text))
	}
	return strings.Join(parts, "; ")
}

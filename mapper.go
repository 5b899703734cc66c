package tswatch

import (
	"path/filepath"
	"strings"
)

// OutputGroup is the set of source files whose artifacts go to Dir.
type OutputGroup struct {
	Dir   string
	Files []string
}

// GroupByOutputDirectory assigns every file to the output directory implied
// by the watch patterns it matches. Groups are returned in the order their
// directory was first seen and keep the input order of their files.
//
// In shallow mode all files go to a single group keyed by opts.Output.
// Otherwise a file matching several patterns is added to several groups;
// callers wanting a single artifact per file supply disjoint patterns.
// Files matching no pattern are not grouped.
func GroupByOutputDirectory(patterns []*Pattern, files []string, opts Options) []OutputGroup {
	if opts.Shallow {
		return []OutputGroup{{Dir: opts.Output, Files: files}}
	}

	var groups []OutputGroup
	index := make(map[string]int)
	for _, p := range patterns {
		for _, file := range files {
			subpath, ok := p.Match(file)
			if !ok {
				continue
			}
			dir := targetDir(file, subpath, opts.Output)
			if i, ok := index[dir]; ok {
				groups[i].Files = append(groups[i].Files, file)
				continue
			}
			index[dir] = len(groups)
			groups = append(groups, OutputGroup{Dir: dir, Files: []string{file}})
		}
	}
	return groups
}

// targetDir computes the output directory for one pattern match.
func targetDir(file, subpath, output string) string {
	switch {
	case output == "":
		return filepath.Dir(file)
	case subpath != "":
		// Join cleans "out/." down to "out".
		return filepath.Join(output, filepath.Dir(subpath))
	default:
		return output
	}
}

// ArtifactPath returns the path of the JavaScript file generated for a
// source file placed in dir. Both "a.ts" and "a.js.ts" become "a.js".
func ArtifactPath(file, dir string) string {
	name := strings.TrimSuffix(filepath.Base(file), SourceExt)
	name = strings.TrimSuffix(name, TargetExt) + TargetExt
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

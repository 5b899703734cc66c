package tswatch

import (
	"os"
	"strings"
)

// Clean reduces a batch of changed paths to the TypeScript files worth
// compiling. Empty entries and duplicates are dropped (first occurrence wins),
// as is every path without the .ts extension. Unless missingOK is set, paths
// that do not exist as regular files are dropped too; removal batches set it
// because their files are already gone.
//
// The existence check races with the filesystem. A file deleted right after
// the check fails later as a regular compile error.
func Clean(paths []string, missingOK bool) []string {
	seen := make(map[string]bool, len(paths))
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		if !isSourceFile(p) {
			continue
		}
		if !missingOK && !fileExists(p) {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return cleaned
}

func isSourceFile(path string) bool {
	return strings.HasSuffix(path, SourceExt)
}

// fileExists returns true if the path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

package tswatch

import (
	"fmt"
	"regexp"
)

// SourceExt is the recognized source file extension.
const SourceExt = ".ts"

// TargetExt is the extension of generated artifacts.
const TargetExt = ".js"

// MapExt is appended to an artifact path to name its source map.
const MapExt = ".map"

// Pattern is a watch pattern. Its first capture group, when present,
// holds the path of a matched file relative to its input root.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles a watch pattern.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("watch pattern %q: %w", expr, err)
	}
	return &Pattern{re: re}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(expr string) *Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic(fmt.Sprintf("tswatch: %v", err))
	}
	return p
}

// InputPattern returns the pattern watching every source file below input.
// An input of "." watches the whole tree.
func InputPattern(input string) *Pattern {
	if input == "." {
		return MustPattern(`^(.+\.(?:ts))$`)
	}
	return MustPattern("^" + regexp.QuoteMeta(input) + `/(.+\.(?:ts))$`)
}

// String returns the regular expression source.
func (p *Pattern) String() string {
	return p.re.String()
}

// Match reports whether file matches the pattern and returns the relative
// subpath captured by the first group. The subpath is empty when the pattern
// has no group or the group did not participate in the match.
func (p *Pattern) Match(file string) (subpath string, ok bool) {
	m := p.re.FindStringSubmatch(file)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		subpath = m[1]
	}
	return subpath, true
}

// CompilePatterns compiles every expression, failing on the first bad one.
func CompilePatterns(exprs []string) ([]*Pattern, error) {
	patterns := make([]*Pattern, 0, len(exprs))
	for _, expr := range exprs {
		p, err := NewPattern(expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// MatchFiles returns the files matching at least one pattern, in input order.
func MatchFiles(patterns []*Pattern, files []string) []string {
	var matched []string
	for _, f := range files {
		for _, p := range patterns {
			if _, ok := p.Match(f); ok {
				matched = append(matched, f)
				break
			}
		}
	}
	return matched
}

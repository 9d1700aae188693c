// Package filter decides which mappings of a process point at outdated
// executables.
package filter

import (
	_ "embed"
	"fmt"
	"iter"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/w31r4/stalemaps/internal/procmaps"
)

//go:embed patterns.yaml
var builtinPatterns []byte

type patternFile struct {
	Ignore []string `yaml:"ignore"`
}

type matcher struct {
	pattern string
	g       glob.Glob
}

// Patterns is an immutable set of suppression globs. A path is suppressed
// when any pattern matches it.
type Patterns struct {
	matchers []matcher
}

// Compile compiles shell globs. No separators are declared, so '*' matches
// across '/' like fnmatch without FNM_PATHNAME.
func Compile(patterns []string) (*Patterns, error) {
	p := &Patterns{matchers: make([]matcher, 0, len(patterns))}
	for _, pat := range patterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", pat, err)
		}
		p.matchers = append(p.matchers, matcher{pattern: pat, g: g})
	}
	return p, nil
}

// Default returns the built-in suppression list.
func Default() (*Patterns, error) {
	var f patternFile
	if err := yaml.Unmarshal(builtinPatterns, &f); err != nil {
		return nil, fmt.Errorf("parse built-in patterns: %w", err)
	}
	return Compile(f.Ignore)
}

// Match returns the first pattern matching path.
func (p *Patterns) Match(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	for _, m := range p.matchers {
		if m.g.Match(path) {
			return m.pattern, true
		}
	}
	return "", false
}

// Len returns the number of patterns.
func (p *Patterns) Len() int {
	if p == nil {
		return 0
	}
	return len(p.matchers)
}

// Outdated returns the sorted, distinct display names of executable mappings
// whose backing file was deleted and is not suppressed. Unless fullPath is
// set, names are reduced to their basename after deduplication, so the same
// library installed under two prefixes is reported once.
func Outdated(mappings iter.Seq[procmaps.Mapping], patterns *Patterns, fullPath bool) []string {
	var paths []string
	for m := range mappings {
		if !m.Deleted || !m.Executable() {
			continue
		}
		if _, ok := patterns.Match(m.Path); ok {
			continue
		}
		paths = append(paths, m.Path)
	}
	paths = dedupeStringsPreserveOrder(paths)

	if !fullPath {
		for i, p := range paths {
			paths[i] = filepath.Base(p)
		}
		paths = dedupeStringsPreserveOrder(paths)
	}
	sort.Strings(paths)
	return paths
}

func dedupeStringsPreserveOrder(in []string) []string {
	if len(in) < 2 {
		return in
	}

	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

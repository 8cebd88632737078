// Package filter decides which diff paths are worth reviewing, skipping
// build artifacts, dependency trees, and lockfiles.
package filter

import (
	"github.com/bmatcuk/doublestar/v4"
)

// defaultPatterns are doublestar globs for paths that are noise in a
// review: build output, vendored dependencies, and generated lockfiles.
var defaultPatterns = []string{
	"**/target/**",
	"**/.fingerprint/**",
	"**/node_modules/**",
	"**/.git/**",
	"**/__pycache__/**",
	"**/*.pyc",
	"dist/**",
	"build/**",
	"**/.next/**",
	"**/package-lock.json",
	"**/yarn.lock",
	"**/Cargo.lock",
	"**/pnpm-lock.yaml",
}

// Set is an ordered list of skip globs.
type Set struct {
	patterns []string
}

// Default returns the built-in skip set extended with any user globs.
func Default(extra ...string) *Set {
	patterns := make([]string, 0, len(defaultPatterns)+len(extra))
	patterns = append(patterns, defaultPatterns...)
	patterns = append(patterns, extra...)
	return &Set{patterns: patterns}
}

// ShouldSkip reports whether the path matches any skip glob. Malformed
// globs never match.
func (s *Set) ShouldSkip(path string) bool {
	for _, p := range s.patterns {
		ok, err := doublestar.Match(p, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Patterns returns the globs in order, for display.
func (s *Set) Patterns() []string {
	out := make([]string, len(s.patterns))
	copy(out, s.patterns)
	return out
}

// ShouldSkip checks a path against the built-in skip set.
func ShouldSkip(path string) bool {
	return Default().ShouldSkip(path)
}

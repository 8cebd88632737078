// Package trust implements glob-style matching of hunk labels against
// trust patterns. The semantics here are the parity contract shared
// with the desktop frontend: identical inputs must match identically
// everywhere, so the rules are deliberately narrow. A pattern without
// a wildcard matches only by exact string equality; "*" matches any
// run of characters (including none); matching is whole-string and
// case-sensitive; every other character is literal.
package trust

import (
	"regexp"
	"strings"
)

// Matches reports whether label satisfies pattern.
func Matches(label, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return label == pattern
	}

	// Escape everything except "*", then turn "*" into ".*" so dots,
	// brackets and other regex metacharacters in patterns stay literal.
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := "^" + strings.Join(parts, ".*") + "$"

	re, err := regexp.Compile(expr)
	if err != nil {
		// QuoteMeta makes this unreachable, but a malformed pattern
		// must never take the matcher down. Worst case: no match.
		return false
	}
	return re.MatchString(label)
}

// AnyMatches reports whether label satisfies any of the patterns.
func AnyMatches(label string, patterns []string) bool {
	for _, p := range patterns {
		if Matches(label, p) {
			return true
		}
	}
	return false
}

// AnyLabelMatchesAny reports whether any label satisfies any pattern.
// An empty label list never matches.
func AnyLabelMatchesAny(labels, patterns []string) bool {
	for _, l := range labels {
		if AnyMatches(l, patterns) {
			return true
		}
	}
	return false
}

// Normalize collapses duplicates in a trust list while preserving the
// first occurrence's position.
func Normalize(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Package match implements the shell-style wildcard matching shared by every
// rule check: "*" matches any run of characters including "/", "?" matches
// exactly one character and "[...]" matches one character from a class.
//
// Matching is case-sensitive. Callers lower-case both sides when they need
// case-insensitive comparison.
package match

import (
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled wildcard pattern.
type Pattern struct {
	raw     string
	g       glob.Glob
	literal bool
}

// Compile compiles pattern. It never fails: a pattern that cannot be compiled
// (for example an unbalanced "[") degrades to literal comparison.
func Compile(pattern string) Pattern {
	p := Pattern{raw: pattern}
	if !hasMeta(pattern) {
		p.literal = true
		return p
	}

	g, err := glob.Compile(quoteUnsupported(pattern))
	if err != nil {
		p.literal = true
		return p
	}

	p.g = g
	return p
}

// Match reports whether text matches the whole pattern.
func (p Pattern) Match(text string) bool {
	if p.literal {
		return text == p.raw
	}
	return p.g.Match(text)
}

// String returns the source pattern.
func (p Pattern) String() string {
	return p.raw
}

// Matches compiles pattern and matches text against it.
func Matches(text, pattern string) bool {
	return Compile(pattern).Match(text)
}

// MatchesTopLevelGlob matches patterns of the exact shape "<dirname>/*".
// It is true when relativePath is dirname itself or lies below it. Only a
// direct child of the traversal root named dirname qualifies; nested
// directories with the same name do not. Any other pattern shape never matches.
func MatchesTopLevelGlob(relativePath, pattern string) bool {
	dirname, ok := strings.CutSuffix(pattern, "/*")
	if !ok {
		return false
	}
	return relativePath == dirname || strings.HasPrefix(relativePath, dirname+"/")
}

// hasMeta reports whether pattern holds any wildcard syntax.
func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// quoteUnsupported escapes syntax that glob understands but shell wildcards
// treat literally: brace alternation and backslash escapes.
func quoteUnsupported(pattern string) string {
	if !strings.ContainsAny(pattern, `{}\`) {
		return pattern
	}

	var b strings.Builder
	b.Grow(len(pattern) + 4)
	for _, r := range pattern {
		switch r {
		case '{', '}', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

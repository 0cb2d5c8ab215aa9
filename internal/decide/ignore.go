package decide

import (
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"filetree/internal/match"
)

// IgnoreMatcher is the ignore-pattern stage of the exclusion chain.
type IgnoreMatcher interface {
	// Match reports whether entry is ignored and by which rule.
	Match(entry Entry) (rule string, ok bool)
}

type ignoreRule struct {
	raw     string
	pattern match.Pattern
	dirOnly bool
}

// SimpleIgnore applies the simplified ignore grammar: "*", "?" and classes,
// a trailing "/" for directory-only rules and no negation or "**".
type SimpleIgnore struct {
	rules []ignoreRule
}

// NewSimpleIgnore compiles patterns in order.
func NewSimpleIgnore(patterns []string) *SimpleIgnore {
	s := &SimpleIgnore{rules: make([]ignoreRule, 0, len(patterns))}
	for _, p := range patterns {
		r := ignoreRule{raw: p, dirOnly: strings.HasSuffix(p, "/")}
		r.pattern = match.Compile(strings.TrimRight(p, "/"))
		s.rules = append(s.rules, r)
	}
	return s
}

// Match checks the rules in order. Directory-only rules match directories by
// basename, by relative path, or when the relative path plus "/" starts with
// the rule. Other rules match the basename or the relative path of any entry.
func (s *SimpleIgnore) Match(entry Entry) (string, bool) {
	for _, r := range s.rules {
		if r.dirOnly {
			if !entry.IsDir {
				continue
			}
			if r.pattern.Match(entry.Name) ||
				r.pattern.Match(entry.RelPath) ||
				strings.HasPrefix(entry.RelPath+"/", r.raw) {
				return r.raw, true
			}
			continue
		}

		if r.pattern.Match(entry.Name) || r.pattern.Match(entry.RelPath) {
			return r.raw, true
		}
	}
	return "", false
}

// GitIgnore applies full gitignore semantics, including negation and "**",
// through go-gitignore.
type GitIgnore struct {
	gi *gitignore.GitIgnore
}

// NewGitIgnore compiles patterns as gitignore lines.
func NewGitIgnore(patterns []string) *GitIgnore {
	return &GitIgnore{gi: gitignore.CompileIgnoreLines(patterns...)}
}

// Match reports whether entry is ignored. Directories are matched with a
// trailing "/" so directory-only lines apply to them alone.
func (g *GitIgnore) Match(entry Entry) (string, bool) {
	p := entry.RelPath
	if entry.IsDir {
		p += "/"
	}
	if g.gi.MatchesPath(p) {
		return "gitignore", true
	}
	return "", false
}

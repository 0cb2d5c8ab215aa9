// Package rules holds the immutable inputs of the inclusion decision: the
// exclusion tables, the forced-inclusion set and the patterns read from an
// ignore file.
//
// All values are built once per run and only read afterwards.
package rules

import (
	"strings"
)

// Tables are the caller-supplied static lists. Names, extensions and forced
// entries are matched case-insensitively; path globs must have the shape
// "<dirname>/*".
type Tables struct {
	Names      []string `json:"names,omitempty" yaml:"names,omitempty"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	PathGlobs  []string `json:"path_globs,omitempty" yaml:"path_globs,omitempty"`
	Forced     []string `json:"forced,omitempty" yaml:"forced,omitempty"`
}

// RuleSet is the normalized exclusion configuration.
type RuleSet struct {
	names          map[string]struct{}
	extensions     map[string]struct{}
	pathGlobs      []string
	ignorePatterns []string
}

// NewRuleSet normalizes tables and ignore patterns into a RuleSet.
// Forced entries in t are ignored here; see NewForcedSet.
func NewRuleSet(t Tables, ignorePatterns []string) RuleSet {
	rs := RuleSet{
		names:          make(map[string]struct{}, len(t.Names)),
		extensions:     make(map[string]struct{}, len(t.Extensions)),
		pathGlobs:      make([]string, 0, len(t.PathGlobs)),
		ignorePatterns: make([]string, 0, len(ignorePatterns)),
	}

	for _, name := range t.Names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			rs.names[name] = struct{}{}
		}
	}

	for _, ext := range t.Extensions {
		if ext = NormalizeExtension(ext); ext != "" {
			rs.extensions[ext] = struct{}{}
		}
	}

	for _, glob := range t.PathGlobs {
		if glob = strings.TrimSpace(glob); glob != "" {
			rs.pathGlobs = append(rs.pathGlobs, glob)
		}
	}

	for _, p := range ignorePatterns {
		if p != "" {
			rs.ignorePatterns = append(rs.ignorePatterns, p)
		}
	}

	return rs
}

// ExcludesName reports whether the lower-cased basename is a hardcoded exclusion.
func (rs RuleSet) ExcludesName(lowerName string) bool {
	_, ok := rs.names[lowerName]
	return ok
}

// ExcludesExtension reports whether the lower-cased extension (no dot) is excluded.
func (rs RuleSet) ExcludesExtension(lowerExt string) bool {
	_, ok := rs.extensions[lowerExt]
	return ok
}

// PathGlobs returns a copy of the hardcoded path globs in order.
func (rs RuleSet) PathGlobs() []string {
	return append([]string(nil), rs.pathGlobs...)
}

// IgnorePatterns returns a copy of the ignore-file patterns in order.
func (rs RuleSet) IgnorePatterns() []string {
	return append([]string(nil), rs.ignorePatterns...)
}

// ForcedSet is the set of lower-cased forced inclusions. An entry ending in
// "/" names a directory whose whole subtree is included; other entries name
// exact basenames.
type ForcedSet struct {
	entries map[string]struct{}
}

// NewForcedSet lower-cases entries into a ForcedSet.
func NewForcedSet(entries []string) ForcedSet {
	fs := ForcedSet{entries: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && e != "/" {
			fs.entries[e] = struct{}{}
		}
	}
	return fs
}

// Contains reports whether the lower-cased entry is forced.
func (fs ForcedSet) Contains(lowerEntry string) bool {
	_, ok := fs.entries[lowerEntry]
	return ok
}

// Len returns the number of forced entries.
func (fs ForcedSet) Len() int {
	return len(fs.entries)
}

// NormalizeExtension converts "txt", ".txt" and "*.txt" to "txt".
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	ext = strings.TrimPrefix(ext, "*.")
	ext = strings.TrimLeft(ext, ".")
	return strings.ToLower(ext)
}

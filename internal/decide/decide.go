// Package decide implements the per-entry inclusion decision: forced
// inclusions first, then the exclusion chain (extension, hardcoded name,
// hardcoded path glob, ignore patterns) with the first match winning.
package decide

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"filetree/internal/match"
	"filetree/internal/rules"
)

// Entry is a transient view of one directory child.
type Entry struct {
	// Name is the basename.
	Name string
	// Path is the absolute filesystem path.
	Path string
	// RelPath is slash-separated and relative to the project root.
	RelPath string
	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// Ancestry summarizes the chain of directories above an entry.
type Ancestry struct {
	// Forced is true when any ancestor was included by a forced rule.
	Forced bool
}

// Reason names the rule class that settled a decision.
type Reason string

const (
	ReasonNone            Reason = "none"
	ReasonForcedDirect    Reason = "forced-direct"
	ReasonForcedInherited Reason = "forced-inherited"
	ReasonExtension       Reason = "extension"
	ReasonName            Reason = "name"
	ReasonPathGlob        Reason = "path-glob"
	ReasonIgnore          Reason = "ignore"
)

// Decision is the outcome for one entry.
type Decision struct {
	Included bool
	Forced   bool
	// Reason is ReasonNone for a plain pass-through.
	Reason Reason
	// Rule is the table entry or pattern that matched, if any.
	Rule string
}

// Engine decides inclusion against one immutable rule set.
type Engine struct {
	rules     rules.RuleSet
	forced    rules.ForcedSet
	pathGlobs []string
	ignore    IgnoreMatcher
	log       logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-entry debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithIgnoreMatcher replaces the ignore-pattern check. The default is
// NewSimpleIgnore over the rule set's ignore patterns.
func WithIgnoreMatcher(m IgnoreMatcher) Option {
	return func(e *Engine) {
		if m != nil {
			e.ignore = m
		}
	}
}

// New builds an Engine for rs and forced.
func New(rs rules.RuleSet, forced rules.ForcedSet, opts ...Option) *Engine {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		rules:     rs,
		forced:    forced,
		pathGlobs: rs.PathGlobs(),
		log:       discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.ignore == nil {
		e.ignore = NewSimpleIgnore(rs.IgnorePatterns())
	}
	return e
}

// Decide returns the inclusion decision for entry under parent.
func (e *Engine) Decide(entry Entry, parent Ancestry) Decision {
	d := e.decide(entry, parent)

	fields := logrus.Fields{"path": entry.RelPath, "reason": d.Reason}
	if d.Rule != "" {
		fields["rule"] = d.Rule
	}
	switch {
	case d.Forced:
		e.log.WithFields(fields).Debug("Including (forced)")
	case d.Included:
		e.log.WithFields(fields).Debug("Including")
	default:
		e.log.WithFields(fields).Debug("Excluded")
	}
	return d
}

func (e *Engine) decide(entry Entry, parent Ancestry) Decision {
	if rule, ok := e.forcedDirect(entry); ok {
		return Decision{Included: true, Forced: true, Reason: ReasonForcedDirect, Rule: rule}
	}
	if parent.Forced {
		return Decision{Included: true, Forced: true, Reason: ReasonForcedInherited}
	}
	if rule, ok := e.forcedInherited(entry.RelPath); ok {
		return Decision{Included: true, Forced: true, Reason: ReasonForcedInherited, Rule: rule}
	}

	if !entry.IsDir {
		if ext, ok := extension(entry.Name); ok && e.rules.ExcludesExtension(ext) {
			return Decision{Reason: ReasonExtension, Rule: ext}
		}
	}

	lower := strings.ToLower(entry.Name)
	if e.rules.ExcludesName(lower) {
		return Decision{Reason: ReasonName, Rule: lower}
	}

	for _, glob := range e.pathGlobs {
		if match.MatchesTopLevelGlob(entry.RelPath, glob) {
			return Decision{Reason: ReasonPathGlob, Rule: glob}
		}
	}

	if rule, ok := e.ignore.Match(entry); ok {
		return Decision{Reason: ReasonIgnore, Rule: rule}
	}

	return Decision{Included: true, Reason: ReasonNone}
}

// forcedDirect checks the entry's own basename. Directories match "name/"
// or, for compatibility, the bare name; files match only the bare name.
func (e *Engine) forcedDirect(entry Entry) (string, bool) {
	lower := strings.ToLower(entry.Name)
	if entry.IsDir && e.forced.Contains(lower+"/") {
		return lower + "/", true
	}
	if e.forced.Contains(lower) {
		return lower, true
	}
	return "", false
}

// forcedInherited checks every proper prefix of relPath, so forcing "a/"
// covers "a/b" and "a/b/c".
func (e *Engine) forcedInherited(relPath string) (string, bool) {
	if e.forced.Len() == 0 {
		return "", false
	}

	lower := strings.ToLower(relPath)
	for i := 0; i < len(lower); i++ {
		if lower[i] != '/' || i == 0 {
			continue
		}
		prefix := lower[:i]
		if e.forced.Contains(prefix + "/") {
			return prefix + "/", true
		}
		if e.forced.Contains(prefix) {
			return prefix, true
		}
	}
	return "", false
}

// extension returns the lower-cased text after the final ".", if any.
func extension(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", false
	}
	return strings.ToLower(name[i+1:]), true
}

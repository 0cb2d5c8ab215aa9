package main

import (
	"context"
	"fmt"

	"filetree/internal/decide"
	"filetree/internal/rules"
)

// ruleBundle is everything the decision engine needs for one run.
type ruleBundle struct {
	rules  rules.RuleSet
	forced rules.ForcedSet
	ignore decide.IgnoreMatcher
}

// loadRules assembles the tables (built-in, replaced by --rules-config,
// extended by flags) and the ignore patterns. An unusable ignore file only
// degrades to no patterns; an unusable tables file is an error.
func loadRules(ctx context.Context) (ruleBundle, error) {
	tables := rules.DefaultTables()

	if rulesConfig != "" {
		path, cleanup, err := localCopy(ctx, rulesConfig)
		if err != nil {
			return ruleBundle{}, fmt.Errorf("failed to fetch rules config %s: %w", rulesConfig, err)
		}
		override, err := rules.LoadTables(path)
		cleanup()
		if err != nil {
			return ruleBundle{}, err
		}
		tables = rules.Merge(tables, override)
	}

	tables = rules.Extend(tables, rules.Tables{
		Names:      splitList(excludeNames),
		Extensions: splitList(excludeExts),
		Forced:     splitList(forceInclusions),
	})

	strict := gitignoreMode == "strict"
	patterns := loadIgnorePatterns(ctx, config.IgnoreFile, strict)
	patterns = append(patterns, splitList(ignorePatterns)...)

	rs := rules.NewRuleSet(tables, patterns)
	forced := rules.NewForcedSet(tables.Forced)

	log.WithField("names", tables.Names).Debug("Hardcoded name exclusions")
	log.WithField("globs", tables.PathGlobs).Debug("Hardcoded glob exclusions")
	log.WithField("extensions", tables.Extensions).Debug("Hardcoded extension exclusions")
	log.WithField("forced", tables.Forced).Info("Forced inclusions (override all exclusions)")

	var matcher decide.IgnoreMatcher
	if strict {
		matcher = decide.NewGitIgnore(rs.IgnorePatterns())
	} else {
		matcher = decide.NewSimpleIgnore(rs.IgnorePatterns())
	}

	return ruleBundle{rules: rs, forced: forced, ignore: matcher}, nil
}

// loadIgnorePatterns reads the ignore file, fetching it first when it is an
// s3:// URI. Strict mode keeps lines as written so anchors reach the
// gitignore engine. Failures are logged and yield no patterns.
func loadIgnorePatterns(ctx context.Context, source string, strict bool) []string {
	path, cleanup, err := localCopy(ctx, source)
	if err != nil {
		log.WithError(err).WithField("path", source).Error("Failed to fetch ignore file")
		return nil
	}
	defer cleanup()

	if strict {
		return rules.LoadGitIgnoreLines(path, log)
	}
	return rules.LoadIgnorePatterns(path, log)
}

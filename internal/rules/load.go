package rules

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ParseIgnorePatterns reads simplified ignore-file rules from r.
//
// Blank lines and lines starting with "#" are skipped, surrounding whitespace
// and line terminators are removed and exactly one leading "/" is dropped, so
// root-anchored patterns match at any depth. A trailing "/" is kept as the
// directory-only marker.
func ParseIgnorePatterns(r io.Reader) ([]string, error) {
	return scanIgnoreLines(r, func(line string) string {
		return strings.TrimPrefix(line, "/")
	})
}

// ParseGitIgnoreLines reads ignore-file lines for a full gitignore engine.
// Blank lines and comments are skipped and surrounding whitespace removed,
// but anchors, negations and "**" are left as written.
func ParseGitIgnoreLines(r io.Reader) ([]string, error) {
	return scanIgnoreLines(r, func(line string) string {
		if line == "/" {
			return ""
		}
		return line
	})
}

func scanIgnoreLines(r io.Reader, normalize func(string) string) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1024*1024)

	var patterns []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if line = normalize(line); line == "" {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan ignore patterns: %w", err)
	}

	return patterns, nil
}

// LoadIgnorePatterns reads the ignore file at path. It never fails: a missing
// file yields no patterns and an Info log, an unreadable one yields no
// patterns and an Error log.
func LoadIgnorePatterns(path string, log logrus.FieldLogger) []string {
	return loadIgnoreFile(path, log, ParseIgnorePatterns)
}

// LoadGitIgnoreLines is LoadIgnorePatterns for ParseGitIgnoreLines.
func LoadGitIgnoreLines(path string, log logrus.FieldLogger) []string {
	return loadIgnoreFile(path, log, ParseGitIgnoreLines)
}

func loadIgnoreFile(path string, log logrus.FieldLogger, parse func(io.Reader) ([]string, error)) []string {
	if log == nil {
		log = discardLogger()
	}
	log = log.WithField("path", path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("No ignore file found")
			return nil
		}
		log.WithError(err).Error("Failed to read ignore file")
		return nil
	}
	defer func() { _ = f.Close() }()

	patterns, err := parse(f)
	if err != nil {
		log.WithError(err).Error("Failed to read ignore file")
		return nil
	}

	log.WithField("patterns", len(patterns)).Info("Parsed ignore file")
	return patterns
}

// LoadTables reads a YAML tables file. Keys left out of the file stay nil so
// Merge keeps the corresponding base table.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("open tables file: %w", err)
	}

	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse tables file %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("tables file %s: %w", path, err)
	}

	return t, nil
}

// Validate checks that every path glob has the supported "<dirname>/*" shape.
func (t Tables) Validate() error {
	for _, glob := range t.PathGlobs {
		glob = strings.TrimSpace(glob)
		dir, ok := strings.CutSuffix(glob, "/*")
		if !ok || dir == "" || strings.ContainsAny(dir, "*?[") {
			return fmt.Errorf("%w: path glob %q must have the form <dirname>/*", ErrInvalidTable, glob)
		}
	}
	return nil
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

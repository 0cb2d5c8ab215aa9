package decide

import (
	"path"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filetree/internal/rules"
)

func file(rel string) Entry {
	return Entry{Name: path.Base(rel), Path: "/root/" + rel, RelPath: rel}
}

func dir(rel string) Entry {
	e := file(rel)
	e.IsDir = true
	return e
}

func newEngine(t *testing.T, tables rules.Tables, ignore []string, opts ...Option) *Engine {
	t.Helper()
	return New(rules.NewRuleSet(tables, ignore), rules.NewForcedSet(tables.Forced), opts...)
}

func TestDecideExclusionChain(t *testing.T) {
	e := newEngine(t, rules.Tables{
		Names:      []string{"build", "Thumbs.db"},
		Extensions: []string{"log", "tmp"},
		PathGlobs:  []string{"dll/*"},
	}, []string{"*.bak", "secrets/", "docs/*.html"})

	tests := []struct {
		name   string
		entry  Entry
		want   bool
		reason Reason
		rule   string
	}{
		{"plain file", file("readme.md"), true, ReasonNone, ""},
		{"plain dir", dir("src"), true, ReasonNone, ""},
		{"extension", file("app.log"), false, ReasonExtension, "log"},
		{"extension case-insensitive", file("APP.LOG"), false, ReasonExtension, "log"},
		{"last extension only", file("archive.log.md"), true, ReasonNone, ""},
		{"no extension", file("log"), true, ReasonNone, ""},
		{"hidden file extension", file(".tmp"), false, ReasonExtension, "tmp"},
		{"extension ignored for dirs", dir("data.log"), true, ReasonNone, ""},
		{"name", dir("build"), false, ReasonName, "build"},
		{"name case-insensitive", dir("Build"), false, ReasonName, "build"},
		{"name nested", dir("src/build"), false, ReasonName, "build"},
		{"name file", file("sub/Thumbs.db"), false, ReasonName, "thumbs.db"},
		{"path glob top-level", file("dll/readme.md"), false, ReasonPathGlob, "dll/*"},
		{"path glob not nested", file("src/dll/readme.md"), true, ReasonNone, ""},
		{"ignore basename", file("src/old.bak"), false, ReasonIgnore, "*.bak"},
		{"ignore dir-only", dir("secrets"), false, ReasonIgnore, "secrets/"},
		{"ignore dir-only nested", dir("a/secrets"), false, ReasonIgnore, "secrets/"},
		{"ignore dir-only skips files", file("secrets"), true, ReasonNone, ""},
		{"ignore path pattern", file("docs/index.html"), false, ReasonIgnore, "docs/*.html"},
		{"ignore path pattern elsewhere", file("web/index.html"), true, ReasonNone, ""},
		{"ignore is case-sensitive", file("OLD.BAK"), true, ReasonNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := e.Decide(tt.entry, Ancestry{})
			assert.Equal(t, tt.want, d.Included)
			assert.False(t, d.Forced)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.rule, d.Rule)
		})
	}
}

func TestDecideFirstMatchWins(t *testing.T) {
	e := newEngine(t, rules.Tables{
		Names:      []string{"cache.log"},
		Extensions: []string{"log"},
	}, []string{"cache.log"})

	d := e.Decide(file("cache.log"), Ancestry{})
	assert.False(t, d.Included)
	assert.Equal(t, ReasonExtension, d.Reason)
}

func TestDecideForced(t *testing.T) {
	e := newEngine(t, rules.Tables{
		Names:      []string{"ofgen", "addons.make", "vendor"},
		Extensions: []string{"png", "log", "make"},
		Forced:     []string{"ofGen/", "addons.make", "Capture.PNG", "legacy"},
	}, []string{"*.png", "vendor/"})

	t.Run("directory with slash entry", func(t *testing.T) {
		d := e.Decide(dir("ofGen"), Ancestry{})
		assert.Equal(t, Decision{Included: true, Forced: true, Reason: ReasonForcedDirect, Rule: "ofgen/"}, d)
	})

	t.Run("file exact basename", func(t *testing.T) {
		d := e.Decide(file("sub/addons.make"), Ancestry{})
		assert.True(t, d.Included)
		assert.True(t, d.Forced)
		assert.Equal(t, ReasonForcedDirect, d.Reason)
	})

	t.Run("file case-insensitive", func(t *testing.T) {
		d := e.Decide(file("capture.png"), Ancestry{})
		assert.True(t, d.Forced)
	})

	t.Run("slash entry does not force files", func(t *testing.T) {
		d := e.Decide(file("ofGen"), Ancestry{})
		assert.False(t, d.Included)
		assert.False(t, d.Forced)
		assert.Equal(t, ReasonName, d.Reason)
	})

	t.Run("bare entry forces directories", func(t *testing.T) {
		d := e.Decide(dir("legacy"), Ancestry{})
		assert.True(t, d.Forced)
	})

	t.Run("descendants by path", func(t *testing.T) {
		for _, rel := range []string{"ofGen/app.log", "ofgen/vendor/x.png", "OFGEN/a/b/c/d.log"} {
			d := e.Decide(file(rel), Ancestry{})
			assert.True(t, d.Included, rel)
			assert.True(t, d.Forced, rel)
			assert.Equal(t, ReasonForcedInherited, d.Reason, rel)
		}
		d := e.Decide(dir("ofGen/vendor"), Ancestry{})
		assert.True(t, d.Forced)
	})

	t.Run("descendants by ancestry", func(t *testing.T) {
		d := e.Decide(file("src/ofGen/trace.log"), Ancestry{Forced: true})
		assert.Equal(t, Decision{Included: true, Forced: true, Reason: ReasonForcedInherited}, d)
	})

	t.Run("nested forced name without ancestry", func(t *testing.T) {
		d := e.Decide(file("src/ofGen/trace.log"), Ancestry{})
		assert.False(t, d.Included)
	})
}

func TestDecideExtensionExcludedUnlessForced(t *testing.T) {
	e := newEngine(t, rules.Tables{Extensions: []string{"tmp"}, Forced: []string{"keep/"}}, nil)

	for _, rel := range []string{"a.tmp", "x/y/b.TMP", "keepnot/c.tmp"} {
		assert.False(t, e.Decide(file(rel), Ancestry{}).Included, rel)
	}
	assert.True(t, e.Decide(file("keep/a.tmp"), Ancestry{}).Included)
	assert.True(t, e.Decide(file("other/a.tmp"), Ancestry{Forced: true}).Included)
}

func TestDecideLogsReasons(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	e := newEngine(t, rules.Tables{Extensions: []string{"log"}}, nil, WithLogger(log))
	e.Decide(file("app.log"), Ancestry{})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "Excluded", entry.Message)
	assert.Equal(t, "app.log", entry.Data["path"])
	assert.Equal(t, ReasonExtension, entry.Data["reason"])
	assert.Equal(t, "log", entry.Data["rule"])
}

func TestDecideWithGitIgnore(t *testing.T) {
	patterns := []string{"*.tmp", "!keep.tmp", "logs/"}
	e := newEngine(t, rules.Tables{}, patterns, WithIgnoreMatcher(NewGitIgnore(patterns)))

	assert.False(t, e.Decide(file("cache.tmp"), Ancestry{}).Included)
	assert.True(t, e.Decide(file("keep.tmp"), Ancestry{}).Included)
	assert.False(t, e.Decide(dir("logs"), Ancestry{}).Included)
	assert.True(t, e.Decide(file("logs"), Ancestry{}).Included)
}

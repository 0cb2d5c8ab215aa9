// Package tree walks a directory depth-first, asks a Decider about every
// entry and keeps the included ones as a logical tree. Render turns that tree
// into the indented text lines shown to users.
package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"filetree/internal/decide"
)

// DefaultMaxDepth bounds recursion when Options.MaxDepth is not set.
const DefaultMaxDepth = 128

var (
	// ErrNotDirectory indicates the traversal root is missing or not a directory.
	ErrNotDirectory = errors.New("not a directory")
	// ErrOutsideProjectRoot indicates the traversal root does not lie under the project root.
	ErrOutsideProjectRoot = errors.New("target is outside the project root")
)

// Decider decides inclusion for one entry.
type Decider interface {
	Decide(entry decide.Entry, parent decide.Ancestry) decide.Decision
}

// Options controls Build.
type Options struct {
	// MaxDepth is the deepest level listed; children of the root are level 1.
	// Directories at this level are listed without children. Zero or less
	// selects DefaultMaxDepth.
	MaxDepth int
	Log      logrus.FieldLogger
}

// Node is one included entry. The root node stands for the traversal root
// itself and is never excluded.
type Node struct {
	Name string
	// RelPath is slash-separated and relative to the project root.
	RelPath  string
	IsDir    bool
	Forced   bool
	Children []*Node
}

// Build walks root and returns its included subtree. Rules are evaluated
// against paths relative to projectRoot, which need not equal root.
//
// Unreadable directories and entries are logged and left out. Only an
// invalid root or a cancelled ctx produce an error.
func Build(ctx context.Context, root, projectRoot string, d Decider, opts Options) (*Node, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Log = l
	}

	absRoot, err := resolve(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	absProject, err := resolve(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root %s: %w", projectRoot, err)
	}

	rel, err := filepath.Rel(absProject, absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOutsideProjectRoot, absRoot)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return nil, fmt.Errorf("%w: %s is not under %s", ErrOutsideProjectRoot, absRoot, absProject)
	}
	if rel == "." {
		rel = ""
	}

	b := &builder{decider: d, opts: opts}
	anc := b.ancestry(absProject, rel)
	node := &Node{Name: filepath.Base(absRoot), RelPath: rel, IsDir: true, Forced: anc.Forced}
	node.Children, err = b.walk(ctx, absRoot, rel, anc, 0)
	if err != nil {
		return nil, err
	}
	return node, nil
}

type builder struct {
	decider Decider
	opts    Options
}

type child struct {
	name  string
	isDir bool
}

// ancestry decides every directory from the project root down to rel so a
// walk starting below the project root sees the same forcing as a full walk.
// The directories themselves are never dropped.
func (b *builder) ancestry(absProject, rel string) decide.Ancestry {
	var anc decide.Ancestry
	if rel == "" {
		return anc
	}

	prefix := ""
	for seg := range strings.SplitSeq(rel, "/") {
		if prefix == "" {
			prefix = seg
		} else {
			prefix += "/" + seg
		}
		dec := b.decider.Decide(decide.Entry{
			Name:    seg,
			Path:    filepath.Join(absProject, filepath.FromSlash(prefix)),
			RelPath: prefix,
			IsDir:   true,
		}, anc)
		anc = decide.Ancestry{Forced: dec.Forced}
	}
	return anc
}

func (b *builder) walk(ctx context.Context, dir, relDir string, parent decide.Ancestry, depth int) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := b.opts.Log
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Warn("Cannot read directory")
		return nil, nil
	}

	var dirs, files []child
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 {
			log.WithField("path", filepath.Join(dir, e.Name())).Debug("Skipping symlink")
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, child{name: e.Name(), isDir: true})
		} else {
			files = append(files, child{name: e.Name()})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	var nodes []*Node
	for _, c := range append(dirs, files...) {
		rel := c.name
		if relDir != "" {
			rel = relDir + "/" + c.name
		}

		dec := b.decider.Decide(decide.Entry{
			Name:    c.name,
			Path:    filepath.Join(dir, c.name),
			RelPath: rel,
			IsDir:   c.isDir,
		}, parent)
		if !dec.Included {
			continue
		}

		nodes = append(nodes, &Node{Name: c.name, RelPath: rel, IsDir: c.isDir, Forced: dec.Forced})
	}

	for _, n := range nodes {
		if !n.IsDir {
			continue
		}
		if depth+1 >= b.opts.MaxDepth {
			log.WithField("path", n.RelPath).WithField("max_depth", b.opts.MaxDepth).Warn("Depth limit reached, not descending")
			continue
		}

		n.Children, err = b.walk(ctx, filepath.Join(dir, n.Name), n.RelPath, decide.Ancestry{Forced: n.Forced}, depth+1)
		if err != nil {
			return nil, err
		}
	}

	return nodes, nil
}

// resolve returns the absolute path of p with symlinks evaluated.
func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

package tree

import (
	"context"
	"strings"
)

// Connector glyphs.
const (
	Branch     = "├── "
	LastBranch = "└── "
	Pipe       = "│   "
	Blank      = "    "
)

// Line is one rendered row of the tree.
type Line struct {
	// Text is the indentation prefix, connector and name, with a trailing
	// "/" for directories.
	Text    string `json:"text"`
	Name    string `json:"name"`
	RelPath string `json:"path"`
	Depth   int    `json:"depth"`
	IsDir   bool   `json:"dir"`
	Forced  bool   `json:"forced"`
}

// Render flattens root's children into depth-first ordered lines. The root
// itself is not rendered.
func Render(root *Node) []Line {
	if root == nil {
		return nil
	}
	var lines []Line
	render(root.Children, "", 1, &lines)
	return lines
}

func render(nodes []*Node, prefix string, depth int, lines *[]Line) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		connector, extension := Branch, Pipe
		if last {
			connector, extension = LastBranch, Blank
		}

		name := n.Name
		if n.IsDir {
			name += "/"
		}
		*lines = append(*lines, Line{
			Text:    prefix + connector + name,
			Name:    n.Name,
			RelPath: n.RelPath,
			Depth:   depth,
			IsDir:   n.IsDir,
			Forced:  n.Forced,
		})

		if n.IsDir {
			render(n.Children, prefix+extension, depth+1, lines)
		}
	}
}

// Lines builds the tree for root and renders it.
func Lines(ctx context.Context, root, projectRoot string, d Decider, opts Options) ([]Line, error) {
	node, err := Build(ctx, root, projectRoot, d, opts)
	if err != nil {
		return nil, err
	}
	return Render(node), nil
}

// Texts returns the Text of every line.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// String renders lines as newline-terminated text.
func String(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

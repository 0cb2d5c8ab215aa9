// Package render presents tree lines: a colored console view, the markdown
// structure document, the addon section appended to it, and JSON lines.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"filetree/internal/tree"
)

// ANSI colors.
const (
	colorDir       = "\033[34m"
	colorFile      = "\033[37m"
	colorRoot      = "\033[36m"
	colorConnector = "\033[33m"
	colorForced    = "\033[32m"
	colorAddon     = "\033[95m"
	colorReset     = "\033[0m"
)

// ColorMode selects when console output is colored.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Enabled reports whether output to w should be colored. In auto mode only
// terminals are colored.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PrintTree writes the root header, every line and a trailing blank line.
// Forced entries are green, other directories blue and files gray.
func PrintTree(w io.Writer, rootName string, lines []tree.Line, color bool) error {
	var b strings.Builder
	if color {
		fmt.Fprintf(&b, "\n%s📁 %s/%s\n", colorRoot, rootName, colorReset)
	} else {
		fmt.Fprintf(&b, "\n📁 %s/\n", rootName)
	}

	for _, l := range lines {
		if !color {
			b.WriteString(l.Text)
			b.WriteByte('\n')
			continue
		}

		prefix, name, ok := strings.Cut(l.Text, "── ")
		if !ok {
			b.WriteString(l.Text)
			b.WriteByte('\n')
			continue
		}

		nameColor := colorFile
		switch {
		case l.Forced:
			nameColor = colorForced
		case l.IsDir:
			nameColor = colorDir
		}
		fmt.Fprintf(&b, "%s%s── %s%s%s\n", colorConnector, prefix, nameColor, name, colorReset)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// Addon colors an addon name for console logs.
func Addon(name string, color bool) string {
	if !color {
		return name
	}
	return colorAddon + name + colorReset
}

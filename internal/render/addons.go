package render

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultAddonsName is the addon list read from the project root.
const DefaultAddonsName = "addons.make"

// LoadAddons reads the addon list at path, skipping blank and "#" lines.
func LoadAddons(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var addons []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			addons = append(addons, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read addons %s: %w", path, err)
	}
	return addons, nil
}

// AddonsSection renders the markdown appended after the structure document.
func AddonsSection(addons []string) string {
	var b strings.Builder
	b.WriteString("\n---\n\n")
	b.WriteString("## Used Addons (from addons.make)\n\n")
	for _, a := range addons {
		fmt.Fprintf(&b, "- `%s`\n", a)
	}
	b.WriteString("\n")
	b.WriteString("### OpenFrameworks Paths\n\n")
	b.WriteString("- OF root path (relative to project root): `../../../`\n\n")
	b.WriteString("- OF addons path (relative to project root): `../../addons/`\n")
	return b.String()
}

package rules

// DefaultTables returns the built-in exclusion and forced-inclusion tables.
// Each call returns fresh slices.
func DefaultTables() Tables {
	return Tables{
		Names: []string{
			".git",
			"bin",
			"obj",
			"__pycache__",
			".venv",
			"venv",
			"node_modules",
			"dist",
			"build",
			".idea",
			".vscode",
			".DS_Store",
			"Thumbs.db",
			".gitignore",
			"dll",
			"refresh_gitignore.ps1",
		},
		PathGlobs: []string{
			"dll/*",
		},
		Extensions: []string{
			"dll", "exe", "log", "tmp", "bak", "pyc", "o", "obj", "so", "dylib",
			"pdb", "ilk", "idb", "sdf", "opensdf", "suo", "user", "cache", "min",
			"map", "swp", "swo", "class", "jar", "war", "ear", "zip", "tar", "gz",
			"rar", "7z",
		},
		Forced: []string{
			"addons.make",
			"Capture.PNG",
			"Capture-v0.1.PNG",
			"ofGen/",
		},
	}
}

// Merge returns base with every table that override sets replaced. A table
// is set when it is non-nil, so an explicit empty list clears the base table.
func Merge(base, override Tables) Tables {
	out := base
	if override.Names != nil {
		out.Names = override.Names
	}
	if override.Extensions != nil {
		out.Extensions = override.Extensions
	}
	if override.PathGlobs != nil {
		out.PathGlobs = override.PathGlobs
	}
	if override.Forced != nil {
		out.Forced = override.Forced
	}
	return out
}

// Extend appends extra entries to each table of t.
func Extend(t Tables, extra Tables) Tables {
	t.Names = append(append([]string(nil), t.Names...), extra.Names...)
	t.Extensions = append(append([]string(nil), t.Extensions...), extra.Extensions...)
	t.PathGlobs = append(append([]string(nil), t.PathGlobs...), extra.PathGlobs...)
	t.Forced = append(append([]string(nil), t.Forced...), extra.Forced...)
	return t
}

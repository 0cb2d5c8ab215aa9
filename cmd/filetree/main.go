package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"filetree/internal/decide"
	"filetree/internal/render"
	"filetree/internal/tree"
)

var (
	target          string
	projectRoot     string
	ignoreFile      string
	ignorePatterns  string
	rulesConfig     string
	outputPath      string
	addonsFile      string
	envFile         string
	excludeNames    string
	excludeExts     string
	forceInclusions string
	colorMode       = "auto"
	gitignoreMode   = "simple"
	uploadDest      string
	maxDepth        = tree.DefaultMaxDepth
	noWrite         bool
	jsonOutput      bool
	quiet           bool
	verbose         bool
	timeout         int
	retries         = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "filetree",
		Usage:     "Render a filtered tree of a directory to the console and FILE-STRUCTURE.md",
		ArgsUsage: "[target]",
		Description: `Walks the target directory (default: current directory) and prints its tree,
leaving out build output, caches, binaries and anything matched by the project's
ignore file. Forced inclusions override every exclusion and, for directories,
cover the whole subtree. Rules are always evaluated relative to the project root,
so a subdirectory can be rendered with the same rules as the whole project.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project-root",
				Aliases:     []string{"r"},
				Usage:       "Directory rules are evaluated against (default: $FILETREE_PROJECT_ROOT or the working directory)",
				Destination: &projectRoot,
			},
			&cli.StringFlag{
				Name:        "ignore-file",
				Usage:       "Ignore file to read, local path or s3://bucket/key (default: <project-root>/.gitignore)",
				Destination: &ignoreFile,
			},
			&cli.StringFlag{
				Name:        "ignore",
				Usage:       "Comma-separated extra ignore patterns",
				Destination: &ignorePatterns,
			},
			&cli.StringFlag{
				Name:        "gitignore-mode",
				Usage:       "Ignore pattern grammar: simple (basename/path wildcards) or strict (full gitignore)",
				Value:       "simple",
				Destination: &gitignoreMode,
			},
			&cli.StringFlag{
				Name:        "rules-config",
				Usage:       "YAML file replacing the built-in names/extensions/path_globs/forced tables, local path or s3://bucket/key",
				Destination: &rulesConfig,
			},
			&cli.StringFlag{
				Name:        "exclude",
				Aliases:     []string{"x"},
				Usage:       "Comma-separated extra names to exclude",
				Destination: &excludeNames,
			},
			&cli.StringFlag{
				Name:        "exclude-ext",
				Usage:       "Comma-separated extra file extensions to exclude",
				Destination: &excludeExts,
			},
			&cli.StringFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "Comma-separated extra forced inclusions (trailing / for directories)",
				Destination: &forceInclusions,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Markdown document path (default: <target>/FILE-STRUCTURE.md)",
				Destination: &outputPath,
			},
			&cli.BoolFlag{
				Name:        "no-write",
				Usage:       "Only print the tree, do not write the markdown document",
				Destination: &noWrite,
			},
			&cli.StringFlag{
				Name:        "addons-file",
				Usage:       "Addon list appended to the document (default: <project-root>/addons.make)",
				Destination: &addonsFile,
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "Colorize console output: auto, always or never",
				Value:       "auto",
				Destination: &colorMode,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print one JSON object per tree line instead of the colored tree",
				Destination: &jsonOutput,
			},
			&cli.IntFlag{
				Name:        "max-depth",
				Usage:       "Deepest level listed (at least 1); directories at this level are not descended",
				Value:       tree.DefaultMaxDepth,
				Destination: &maxDepth,
			},
			&cli.StringFlag{
				Name:        "upload",
				Usage:       "Publish the written document to s3://bucket/key",
				Destination: &uploadDest,
			},
			&cli.StringFlag{
				Name:        "env",
				Usage:       "Path to .env file",
				Value:       ".env",
				Destination: &envFile,
			},
			&cli.BoolFlag{
				Name:        "quiet",
				Aliases:     []string{"q"},
				Usage:       "Only log warnings and errors",
				Destination: &quiet,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "Log every inclusion decision",
				Destination: &verbose,
			},
			&cli.IntFlag{
				Name:        "timeout",
				Usage:       "Timeout for the whole run in seconds (0 for no timeout)",
				Value:       0,
				Destination: &timeout,
			},
			&cli.IntFlag{
				Name:        "retries",
				Usage:       "Number of attempts for S3 operations",
				Value:       3,
				Destination: &retries,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			target = cmd.Args().First()
			if target == "" {
				target = "."
			}
			if cmd.Args().Len() > 1 {
				return ctx, fmt.Errorf("expected at most one target directory, got %d", cmd.Args().Len())
			}

			if info, err := os.Stat(target); err != nil {
				return ctx, fmt.Errorf("target directory does not exist: %v", err)
			} else if !info.IsDir() {
				return ctx, fmt.Errorf("target path is not a directory: %s", target)
			}

			if quiet && verbose {
				return ctx, fmt.Errorf("--quiet and --verbose cannot be used together")
			}
			if _, err := render.ParseColorMode(colorMode); err != nil {
				return ctx, err
			}
			if gitignoreMode != "simple" && gitignoreMode != "strict" {
				return ctx, fmt.Errorf("invalid gitignore mode %q (want simple or strict)", gitignoreMode)
			}
			if maxDepth < 1 {
				return ctx, fmt.Errorf("max-depth must be at least 1, got %d", maxDepth)
			}
			if uploadDest != "" {
				if !strings.HasPrefix(uploadDest, "s3://") {
					return ctx, fmt.Errorf("upload destination must be an s3:// URI")
				}
				if noWrite {
					return ctx, fmt.Errorf("--upload requires the document to be written, drop --no-write")
				}
			}
			return ctx, nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTree(ctx)
		},
	}
}

func runTree(ctx context.Context) error {
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Could not load %s file: %v\n", envFile, err)
		}
	}

	setupLogger()

	absTarget, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("error resolving target: %w", err)
	}

	config, err = resolveConfig(absTarget)
	if err != nil {
		return err
	}
	resetS3Client()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	log.WithField("path", config.ProjectRoot).Info("Project root (for rules)")
	log.WithField("path", absTarget).Info("Target directory to analyze")

	rs, err := loadRules(ctx)
	if err != nil {
		return fmt.Errorf("error loading rules: %w", err)
	}

	engine := decide.New(rs.rules, rs.forced,
		decide.WithLogger(log),
		decide.WithIgnoreMatcher(rs.ignore))

	log.Info("Building directory tree...")
	node, err := tree.Build(ctx, absTarget, config.ProjectRoot, engine, tree.Options{
		MaxDepth: maxDepth,
		Log:      log,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("interrupted: %w", err)
		}
		return err
	}
	lines := tree.Render(node)

	if err := printLines(node.Name, lines); err != nil {
		return fmt.Errorf("error printing tree: %w", err)
	}

	if noWrite {
		return nil
	}

	doc := render.Markdown(node.Name, lines)
	if addons := loadAddons(config.AddonsFile); len(addons) > 0 {
		doc = append(doc, render.AddonsSection(addons)...)
	}

	if _, err := render.WriteDocument(config.Output, doc, log); err != nil {
		return fmt.Errorf("error writing %s: %w", config.Output, err)
	}

	if uploadDest != "" {
		if err := publishDocument(ctx, config.Output, uploadDest); err != nil {
			return fmt.Errorf("error uploading document: %w", err)
		}
	}

	return nil
}

func printLines(rootName string, lines []tree.Line) error {
	if jsonOutput {
		return render.WriteJSON(os.Stdout, lines)
	}
	mode, _ := render.ParseColorMode(colorMode)
	return render.PrintTree(os.Stdout, rootName, lines, mode.Enabled(os.Stdout))
}

// loadAddons reads the addon list. A missing or unreadable list is logged
// and yields nothing.
func loadAddons(path string) []string {
	addons, err := render.LoadAddons(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Debug("No addons.make found at project root")
		} else {
			log.WithError(err).WithField("path", path).Error("Failed to read addons.make")
		}
		return nil
	}
	if len(addons) == 0 {
		log.WithField("path", path).Info("addons.make is empty (no addons listed)")
		return nil
	}

	mode, _ := render.ParseColorMode(colorMode)
	color := mode.Enabled(os.Stderr)
	log.Infof("Detected %d addons in addons.make", len(addons))
	for _, a := range addons {
		log.Infof("  • %s", render.Addon(a, color))
	}
	return addons
}

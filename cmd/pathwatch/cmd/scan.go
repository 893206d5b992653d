package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pathwatch/internal/adapters/walker"
	"pathwatch/internal/config"
	"pathwatch/internal/tracker"
)

var (
	scanPattern string
	scanNewOnly bool
	scanQuiet   bool
)

// scanCmd performs a one-shot reconcile and prints the result.
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan the project root once and list tracked files",
	Long: `Scan the project root (or a subtree) once, applying the configured
ignore patterns, and print every tracked file.

With --pattern, only files matching the regular expression are printed.

Examples:
  pathwatch scan                    # Scan the whole project root
  pathwatch scan content/posts      # Scan a subtree
  pathwatch scan --pattern '\.md$'  # Only report markdown files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanPattern, "pattern", "", "only report paths matching this regular expression")
	scanCmd.Flags().BoolVar(&scanNewOnly, "new-only", false, "report only files not seen earlier in this scan session")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "print the file count only")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	setupLogging(cfg)

	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	ignore, err := tracker.NewIgnoreList(cfg.Tracker.IgnorePatterns)
	if err != nil {
		return fmt.Errorf("invalid ignore patterns: %w", err)
	}

	lister, err := walker.New(cfg.Project.Root)
	if err != nil {
		return err
	}

	t := tracker.New(cfg.Project.Root, lister, ignore)
	if cfg.Project.OutputDir != "" {
		if err := t.AddIgnorePattern(config.OutputDirPattern(cfg.Project.OutputDir)); err != nil {
			return err
		}
	}

	var matched []string
	if _, err := t.OnChanged(scanPattern, tracker.HandlerFunc(func(path string) error {
		matched = append(matched, path)
		return nil
	})); err != nil {
		return fmt.Errorf("invalid --pattern: %w", err)
	}

	ctx := context.Background()
	if scanNewOnly {
		err = t.FindNewFiles(ctx, target)
	} else {
		err = t.Reconcile(ctx, target)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if !scanQuiet {
		for _, p := range matched {
			fmt.Fprintln(os.Stdout, p)
		}
	}
	fmt.Fprintf(os.Stdout, "%d files\n", len(matched))
	return nil
}

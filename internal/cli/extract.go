package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mvp-joe/docgen/internal/config"
	"github.com/mvp-joe/docgen/internal/discovery"
	"github.com/mvp-joe/docgen/internal/extractor"
	"github.com/spf13/cobra"
)

// extractOptions holds the extract command's flags.
type extractOptions struct {
	format      string
	output      string
	workers     int
	timeout     time.Duration
	quiet       bool
	watch       bool
	title       string
	description string
}

var extractOpts extractOptions

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [path]",
	Short: "Extract documentation metadata from a source tree",
	Long: `Extract scans a directory recursively for Python (.py) and Ruby (.rb)
files and writes a report of everything it found.

For Python files it records the module docstring, every import, and each
class and function with its docstring and positional arguments. Ruby files
are reported only when they define a connector literal (title, connection,
actions, triggers, methods, object_definitions, pick_lists).

Files that fail to parse are listed in the report and on stderr; the rest
of the tree is still processed.

Examples:
  # Extract the current directory as JSON to stdout
  docgen extract

  # Write YAML to a file, with a project title
  docgen extract ./src --format yaml --output docs/metadata.yaml --title "My Project"

  # Re-extract whenever a source file changes
  docgen extract --watch --output docs/metadata.json
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringVarP(&extractOpts.format, "format", "f", "", "Report format: json or yaml (default from config, json)")
	flags.StringVarP(&extractOpts.output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.IntVar(&extractOpts.workers, "workers", 0, "Files extracted concurrently (default from config, NumCPU)")
	flags.DurationVar(&extractOpts.timeout, "timeout", 0, "Per-file extraction timeout, 0 disables (default from config, 30s)")
	flags.BoolVarP(&extractOpts.quiet, "quiet", "q", false, "Disable progress bars and non-error output")
	flags.BoolVarP(&extractOpts.watch, "watch", "w", false, "Watch for file changes and re-extract")
	flags.StringVar(&extractOpts.title, "title", "", "Project title to include in the report")
	flags.StringVar(&extractOpts.description, "description", "", "Project description to include in the report")
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling extraction...")
			cancel()
		case <-ctx.Done():
		}
	}()

	rootDir := "."
	if len(args) > 0 {
		rootDir = args[0]
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	opts := extractOpts
	applyFlagOverrides(cmd, cfg, &opts)
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return extract(ctx, rootDir, cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// applyFlagOverrides copies explicitly set flags over the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config, opts *extractOptions) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("output") {
		cfg.Output.Path = opts.output
	}
	if flags.Changed("workers") {
		cfg.Extraction.Workers = opts.workers
	}
	if flags.Changed("timeout") {
		cfg.Extraction.FileTimeout = opts.timeout
	}
}

// extract runs one extraction (and optionally watch mode) and emits the
// report. Per-file failures are reported but do not make it fail.
func extract(ctx context.Context, rootDir string, cfg *config.Config, opts extractOptions, stdout, stderr io.Writer) error {
	format, err := extractor.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	scanner, err := discovery.NewScanner(cfg.Discovery.Ignore)
	if err != nil {
		return fmt.Errorf("failed to create scanner: %w", err)
	}

	fileTimeout := cfg.Extraction.FileTimeout
	if fileTimeout == 0 {
		fileTimeout = -1
	}

	var progress extractor.ProgressReporter = &extractor.NoOpProgressReporter{}
	if !opts.quiet {
		progress = NewCLIProgressReporter(false)
	}

	e, err := extractor.New(extractor.Options{
		Workers:     cfg.Extraction.Workers,
		FileTimeout: fileTimeout,
		Scanner:     scanner,
		Progress:    progress,
	})
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	emit := func(result *extractor.Result) error {
		if err := writeReport(result, cfg.Output.Path, format, opts, stdout); err != nil {
			return err
		}
		reportFailures(stderr, result)
		if verbose {
			printSummary(stderr, result)
		}
		return nil
	}

	result, err := e.ExtractPath(ctx, rootDir)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	if err := emit(result); err != nil {
		return err
	}

	if !opts.watch {
		return nil
	}

	watcher, err := extractor.NewWatcher(e, rootDir, cfg.Watch.Debounce, func(result *extractor.Result, err error) {
		if err != nil {
			return
		}
		if err := emit(result); err != nil {
			log.Printf("Error writing report: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !opts.quiet {
		log.Println("Watching for changes (Ctrl+C to stop)...")
	}
	watcher.Start(ctx)
	<-ctx.Done()
	watcher.Stop()

	if !opts.quiet {
		log.Println("Watch mode stopped")
	}
	return nil
}

// writeReport writes the report to path, or to stdout when path is empty.
func writeReport(result *extractor.Result, path string, format extractor.Format, opts extractOptions, stdout io.Writer) error {
	report := extractor.NewReport(result, opts.title, opts.description)
	if path == "" {
		return report.Encode(stdout, format)
	}
	if err := report.WriteFile(path, format); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if !opts.quiet {
		log.Printf("Report written to %s", path)
	}
	return nil
}

// reportFailures lists every file that produced no documentation because
// of an error.
func reportFailures(w io.Writer, result *extractor.Result) {
	if len(result.Failures) == 0 {
		return
	}
	fmt.Fprintf(w, "✗ %d file(s) could not be processed:\n", len(result.Failures))
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  %s\n", f)
	}
}

package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mvp-joe/docgen/internal/extractor"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with progress bars.
// Everything goes to stderr so stdout stays free for the report.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   os.Stderr,
	}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(pythonFiles, connectorFiles int) {
	if c.quiet {
		return
	}
	log.Printf("Found %d Python files and %d connector candidates\n", pythonFiles, connectorFiles)
}

func (c *CLIProgressReporter) OnExtractionStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Extracting files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

// OnFileProcessed is safe for concurrent use; the bar locks internally.
func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *extractor.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.out, "✓ Extraction complete: %d of %d files documented in %.1fs\n",
		stats.PythonDocs+stats.ConnectorDocs,
		stats.PythonFiles+stats.ConnectorFiles,
		stats.ProcessingTime.Seconds())
	fmt.Fprintf(c.out, "  Python modules: %d\n", stats.PythonDocs)
	fmt.Fprintf(c.out, "  Connectors:     %d\n", stats.ConnectorDocs)
	if stats.Failures > 0 {
		fmt.Fprintf(c.out, "  Failures:       %d\n", stats.Failures)
	}
}

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with a progress bar.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(quiet bool, out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet: quiet,
		out:   out,
	}
}

var _ generator.ProgressReporter = (*CLIProgressReporter)(nil)

func (c *CLIProgressReporter) OnDiscoveryStart() {
	if c.quiet {
		return
	}
	fmt.Fprintln(c.out, "Discovering scripts...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(inputs int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Found %s script(s)\n", formatNumber(inputs))
	if inputs == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(inputs,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Generating docs"),
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

func (c *CLIProgressReporter) OnFileProcessed(input string, err error) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Describe(filepath.Base(input))
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *generator.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.out, "✓ Generated %s document(s) in %.1fs\n",
		formatNumber(stats.Generated), stats.Elapsed.Seconds())
	if stats.Failed > 0 {
		fmt.Fprintf(c.out, "✗ %s failed\n", formatNumber(stats.Failed))
	}
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

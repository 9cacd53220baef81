package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/rawnet/httpc/packages/executor"
	"github.com/rawnet/httpc/packages/metrics"
)

// Formatter prints per-run summary and error lines to the console.
type Formatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type FormatterOption func(*Formatter)

func WithWriter(w io.Writer) FormatterOption {
	return func(f *Formatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) FormatterOption {
	return func(f *Formatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) FormatterOption {
	return func(f *Formatter) {
		f.noColor = nc
	}
}

func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{writer: os.Stderr}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

// Summary prints one line per completed run when verbose mode is on.
func (f *Formatter) Summary(out *executor.Outcome) {
	if !f.verbose {
		return
	}

	statusColor := color.New(color.FgGreen).SprintFunc()
	switch {
	case out.StatusCode == 0 || out.StatusCode >= 500:
		statusColor = color.New(color.FgRed).SprintFunc()
	case out.StatusCode >= 400:
		statusColor = color.New(color.FgYellow).SprintFunc()
	case out.StatusCode >= 300:
		statusColor = color.New(color.FgCyan).SprintFunc()
	}

	source := ""
	if out.FromCache {
		source = " (cache)"
	}
	redirects := ""
	if out.RedirectCount > 0 {
		redirects = fmt.Sprintf(" [%d redirects]", out.RedirectCount)
	}

	fmt.Fprintf(f.writer, "%s %s %s %dms%s%s\n",
		out.Method, out.FinalURL, statusColor(fmt.Sprintf("%d", out.StatusCode)),
		out.Elapsed.Milliseconds(), redirects, source)
}

// Error prints a diagnostic for a failed run.
func (f *Formatter) Error(url string, err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s: %v\n", red("error:"), url, err)
}

// Stats prints the aggregate latency summary for the batch.
func (f *Formatter) Stats(s metrics.Summary) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "\n%s\n", bold("Requests"))
	fmt.Fprintf(f.writer, "  total: %d  ok: %d  failed: %d\n", s.Total, s.Success, s.Errors)
	if s.Total > 0 {
		fmt.Fprintf(f.writer, "  min: %dms  p50: %dms  p95: %dms  p99: %dms  max: %dms\n",
			s.Min.Milliseconds(), s.P50.Milliseconds(), s.P95.Milliseconds(),
			s.P99.Milliseconds(), s.Max.Milliseconds())
	}
}

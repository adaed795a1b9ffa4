package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/g5becks/outline/internal/index"
)

// IndexPrinter renders index run events with colored output.
type IndexPrinter struct {
	w       io.Writer
	verbose bool
	mu      sync.Mutex
	s       styles
}

// NewIndexPrinter creates an IndexPrinter that writes to stderr.
func NewIndexPrinter(verbose bool, noColor bool) *IndexPrinter {
	return NewIndexPrinterWithWriter(os.Stderr, verbose, noColor)
}

// NewIndexPrinterWithWriter creates an IndexPrinter that writes to w.
func NewIndexPrinterWithWriter(w io.Writer, verbose bool, noColor bool) *IndexPrinter {
	return &IndexPrinter{
		w:       w,
		verbose: verbose,
		s:       newStyles(noColor),
	}
}

// HandleEvent is the callback wired into index.Options.OnEvent. Unchanged
// files and start events are only printed in verbose mode.
func (p *IndexPrinter) HandleEvent(e index.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case index.EventRunStart:
		if p.verbose {
			fmt.Fprintf(p.w, "%s %d file(s) matched\n", p.s.dim.Sprint("•"), e.Total)
		}

	case index.EventFileStart:
		if p.verbose {
			fmt.Fprintf(p.w, "%s scanning %s...\n", p.s.dim.Sprint("⟳"), p.s.bold.Sprint(e.Path))
		}

	case index.EventFileDone:
		p.handleDone(e)
	}
}

func (p *IndexPrinter) handleDone(e index.Event) {
	name := p.s.bold.Sprint(e.Path)

	switch e.Status {
	case index.StatusFailed:
		fmt.Fprintf(p.w, "%s %s: %s\n", p.s.red.Sprint("✗"), name, e.Err)

	case index.StatusSkipped:
		fmt.Fprintf(p.w, "%s %s %s\n", p.s.yellow.Sprint("!"), name, p.s.dim.Sprintf("(skipped: %s)", e.Warning))

	case index.StatusReused:
		if p.verbose {
			fmt.Fprintf(p.w, "%s %s %s\n", p.s.dim.Sprint("—"), name, p.s.dim.Sprint("(unchanged)"))
		}

	case index.StatusScanned:
		if e.Warning != "" {
			fmt.Fprintf(p.w, "%s %s %s %s\n", p.s.green.Sprint("✓"), name,
				p.s.dim.Sprint(formatElements(e.Elements)), p.s.yellow.Sprintf("(warning: %s)", e.Warning))
			return
		}
		fmt.Fprintf(p.w, "%s %s %s\n", p.s.green.Sprint("✓"), name, p.s.dim.Sprint(formatElements(e.Elements)))
	}
}

func formatElements(n int) string {
	if n == 1 {
		return "(1 element)"
	}
	return fmt.Sprintf("(%d elements)", n)
}

// PrintSummary renders a final summary line after a run completes.
func (p *IndexPrinter) PrintSummary(r *index.RunResult) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w)

	parts := fmt.Sprintf("index complete: %d file(s), %d scanned, %d unchanged, %d skipped, %d element(s)",
		r.Files,
		r.Scanned,
		r.Reused,
		r.Skipped,
		r.Elements,
	)

	if r.Removed > 0 {
		parts += fmt.Sprintf(", %d removed", r.Removed)
	}

	if r.Errors > 0 {
		parts += fmt.Sprintf(", %s", p.s.red.Sprintf("%d failed", r.Errors))
	}

	fmt.Fprintln(p.w, parts)
}

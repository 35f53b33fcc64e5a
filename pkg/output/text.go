package output

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/ccollicutt/stackreport/pkg/parser"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "stackreport: %d errors, %d frames, %d empty stacks\n",
		report.Summary.ErrorsProcessed,
		report.Summary.FramesExtracted,
		report.Summary.EmptyStacks)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== stackreport ===")
	fmt.Fprintln(w)

	for _, result := range report.Results {
		f.formatResult(result, w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d errors processed, %d with stack, %d empty stacks, %d frames extracted\n",
		report.Summary.ErrorsProcessed,
		report.Summary.WithStack,
		report.Summary.EmptyStacks,
		report.Summary.FramesExtracted)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Family: %s\n", report.Metadata.Family)
		fmt.Fprintf(w, "Sources: %d\n", len(report.Metadata.Sources))
		_, err := fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
		return err
	}

	return nil
}

func (f *TextFormatter) formatResult(result *Result, w io.Writer) {
	// Results without frames are noise unless asked for
	if len(result.Stack) == 0 && !f.opts.Verbose {
		return
	}

	fmt.Fprintf(w, "[%s:%d] %s\n", result.Source, result.LineNum, result.Message)

	switch {
	case !result.HasStack:
		fmt.Fprintln(w, "  (no stack)")
	case len(result.Stack) == 0:
		fmt.Fprintln(w, "  No frames extracted")
	}
	for _, frame := range result.Stack {
		fmt.Fprintf(w, "  at %s\n", FrameLocation(frame))
	}
	fmt.Fprintln(w)
}

// FrameLocation renders a frame as filename:line:column, with "?" for
// unresolved coordinates.
func FrameLocation(frame parser.Frame) string {
	return frame.Filename + ":" + coordinate(frame.Line) + ":" + coordinate(frame.Column)
}

func coordinate(n int) string {
	if n == parser.Unresolved {
		return "?"
	}
	return strconv.Itoa(n)
}

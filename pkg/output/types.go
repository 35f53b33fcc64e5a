// Package output provides formatting and output generation for error reports.
package output

import (
	"time"

	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// Report is the complete output of a parse run.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results contains one entry per raw error read.
	Results []*Result `json:"results"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Result is the normalized form of one raw error with its origin.
type Result struct {
	// Source is the file the raw error came from.
	Source string `json:"source"`

	// LineNum is the 1-based line where the raw error starts.
	LineNum int `json:"line"`

	// HasStack reports whether the raw error carried a stack.
	HasStack bool `json:"has_stack"`

	stacktrace.ErrorReport
}

// Empty reports whether a stack was present but produced no frames.
func (r *Result) Empty() bool {
	return r.HasStack && len(r.Stack) == 0
}

// Summary provides aggregate statistics.
type Summary struct {
	// ErrorsProcessed is the number of raw errors normalized.
	ErrorsProcessed int `json:"errors_processed"`

	// WithStack is the number of raw errors that carried a stack.
	WithStack int `json:"with_stack"`

	// EmptyStacks is the number of stacks that produced no frames.
	EmptyStacks int `json:"empty_stacks"`

	// FramesExtracted is the total number of frames across all results.
	FramesExtracted int `json:"frames_extracted"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Family is the browser family detected for the environment.
	Family family.Family `json:"family"`

	// Sources lists the files that were read.
	Sources []string `json:"sources"`

	// AnalyzedAt is when the run finished.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from results and computes its summary.
func NewReport(results []*Result, meta Metadata) *Report {
	if results == nil {
		results = []*Result{}
	}
	report := &Report{
		Results:  results,
		Metadata: meta,
	}
	for _, r := range results {
		report.Summary.ErrorsProcessed++
		report.Summary.FramesExtracted += len(r.Stack)
		if r.HasStack {
			report.Summary.WithStack++
		}
		if r.Empty() {
			report.Summary.EmptyStacks++
		}
	}
	return report
}

// HasEmptyStacks returns true if any stack produced no frames.
func (r *Report) HasEmptyStacks() bool {
	return r.Summary.EmptyStacks > 0
}

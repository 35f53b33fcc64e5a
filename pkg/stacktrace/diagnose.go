package stacktrace

import (
	"fmt"

	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/parser"
)

// Diagnosis explains how a RawError was normalized line by line.
type Diagnosis struct {
	Family   family.Family    `json:"family"`
	Message  string           `json:"message"`
	HasStack bool             `json:"has_stack"`
	Lines    []LineDiagnosis  `json:"lines"`
	Frames   parser.FrameList `json:"frames"`

	// Fault is set when a matcher failed; Frames is then empty. When
	// Explain itself failed, Lines stops before the failing line.
	Fault string `json:"fault,omitempty"`
}

// LineDiagnosis is the diagnosis of one stack line.
type LineDiagnosis struct {
	// Number is the 1-based line number within the stack.
	Number int `json:"number"`
	parser.Diagnosis
}

// Counts tallies line outcomes.
func (d *Diagnosis) Counts() map[parser.Outcome]int {
	counts := make(map[parser.Outcome]int)
	for _, l := range d.Lines {
		counts[l.Outcome]++
	}
	return counts
}

// Diagnose classifies every stack line of raw. Frames equals what
// BuildFrameList returns for the same input. A fault in the matcher, in
// either Explain or MatchLine, sets Fault and leaves Frames empty.
func (n *Normalizer) Diagnose(raw RawError) Diagnosis {
	d := Diagnosis{
		Family:   n.Family(),
		Message:  raw.Message,
		HasStack: raw.HasStack(),
		Lines:    []LineDiagnosis{},
		Frames:   parser.FrameList{},
	}
	if raw.Stack == nil {
		return d
	}
	m, ok := n.matcher(d.Family)
	if !ok {
		return d
	}

	lines := parser.SplitLines(*raw.Stack)
	for i, line := range lines {
		ld, err := explain(d.Family, m, i+1, line)
		if err != nil {
			d.Fault = err.Error()
			return d
		}
		d.Lines = append(d.Lines, LineDiagnosis{Number: i + 1, Diagnosis: ld})
	}

	frames, err := collect(d.Family, m, lines)
	if err != nil {
		d.Fault = err.Error()
		return d
	}
	d.Frames = frames
	return d
}

// explain uses the matcher's own Explain when available and otherwise
// falls back to MatchLine, which cannot tell why a line was dropped.
// A panic in Explain is returned as a *FaultError, like in matchLine.
func explain(f family.Family, m parser.LineMatcher, num int, line string) (d parser.Diagnosis, err error) {
	if e, ok := m.(parser.Explainer); ok {
		defer func() {
			if r := recover(); r != nil {
				d = parser.Diagnosis{}
				err = &FaultError{Family: f, Line: num, Text: line, Err: fmt.Errorf("%w: %v", ErrMatcherPanic, r)}
			}
		}()
		return e.Explain(line), nil
	}

	d = parser.Diagnosis{Text: line, Outcome: parser.OutcomeNoFrame}
	frame, merr := matchLine(f, m, num, line)
	if merr != nil || frame == nil {
		return d, nil
	}
	d.Frame = frame
	d.Filename = frame.Filename
	if frame.Line == parser.Unresolved || frame.Column == parser.Unresolved {
		d.Outcome = parser.OutcomeUnparsableCoordinate
	} else {
		d.Outcome = parser.OutcomeFrame
	}
	return d, nil
}

package parser

// Outcome classifies what happened to a single stack line.
type Outcome string

const (
	// OutcomeFrame means the line produced a frame with both coordinates resolved.
	OutcomeFrame Outcome = "frame"

	// OutcomeUnparsableCoordinate means the line produced a frame but at
	// least one coordinate fell back to Unresolved.
	OutcomeUnparsableCoordinate Outcome = "unparsable_coordinate"

	// OutcomeUnparsableLine means the line does not match the family grammar.
	OutcomeUnparsableLine Outcome = "unparsable_line"

	// OutcomeUnreportableFrame means the line matched but the filename
	// failed the extension allow-list.
	OutcomeUnreportableFrame Outcome = "unreportable_frame"

	// OutcomeNoFrame is used for matchers that cannot explain why a line
	// produced no frame.
	OutcomeNoFrame Outcome = "no_frame"
)

// Contributes reports whether the outcome adds a frame to the list.
func (o Outcome) Contributes() bool {
	return o == OutcomeFrame || o == OutcomeUnparsableCoordinate
}

// Diagnosis explains how one stack line was handled.
type Diagnosis struct {
	// Text is the trimmed line.
	Text string `json:"text"`

	// Outcome is the classification.
	Outcome Outcome `json:"outcome"`

	// Filename, RawLine and RawColumn are the captured groups (empty when
	// the line did not match).
	Filename  string `json:"filename,omitempty"`
	RawLine   string `json:"raw_line,omitempty"`
	RawColumn string `json:"raw_column,omitempty"`

	// Frame is the resulting frame, if any.
	Frame *Frame `json:"frame,omitempty"`
}

// Explainer is implemented by matchers that can classify a line in detail.
type Explainer interface {
	Explain(line string) Diagnosis
}

// Explain implements Explainer.
func (ChromeMatcher) Explain(line string) Diagnosis {
	return diagnose(line, ChromePattern.FindStringSubmatch(line))
}

// Explain implements Explainer.
func (FirefoxMatcher) Explain(line string) Diagnosis {
	return diagnose(line, FirefoxPattern.FindStringSubmatch(line))
}

// diagnose classifies a line from its submatches (nil when unmatched).
func diagnose(line string, m []string) Diagnosis {
	d := Diagnosis{Text: line}
	if m == nil {
		d.Outcome = OutcomeUnparsableLine
		return d
	}
	d.Filename, d.RawLine, d.RawColumn = m[2], m[3], m[4]

	d.Frame = ValidateFrame(d.Filename, d.RawLine, d.RawColumn)
	switch {
	case d.Frame == nil:
		d.Outcome = OutcomeUnreportableFrame
	case d.Frame.Line == Unresolved || d.Frame.Column == Unresolved:
		d.Outcome = OutcomeUnparsableCoordinate
	default:
		d.Outcome = OutcomeFrame
	}
	return d
}

package stacktrace

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ccollicutt/stackreport/pkg/detector"
	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/parser"
)

// plainMatcher hides the Explainer implementation of the Chrome matcher.
type plainMatcher struct{}

func (plainMatcher) Family() family.Family { return family.Chrome }

func (plainMatcher) MatchLine(line string) (*parser.Frame, error) {
	return parser.ChromeMatcher{}.MatchLine(line)
}

func outcomes(d Diagnosis) []parser.Outcome {
	out := make([]parser.Outcome, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = l.Outcome
	}
	return out
}

func TestDiagnose_Chrome(t *testing.T) {
	n := New(WithEnvironment(detector.NewEnvironment("chrome")))
	d := n.Diagnose(NewRawError("Error raised", chromeStack))

	if d.Family != family.Chrome {
		t.Errorf("Family = %q, want chrome", d.Family)
	}
	want := []parser.Outcome{
		parser.OutcomeUnparsableLine,
		parser.OutcomeFrame,
		parser.OutcomeFrame,
		parser.OutcomeFrame,
		parser.OutcomeUnreportableFrame,
		parser.OutcomeFrame,
	}
	if diff := cmp.Diff(want, outcomes(d)); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(fixtureFrames, d.Frames); diff != "" {
		t.Errorf("Frames mismatch (-want +got):\n%s", diff)
	}
	if d.Lines[4].Number != 5 || d.Lines[4].Filename != "<anonymous>" {
		t.Errorf("Lines[4] = %+v", d.Lines[4])
	}

	counts := d.Counts()
	if counts[parser.OutcomeFrame] != 4 || counts[parser.OutcomeUnparsableLine] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
}

func TestDiagnose_UnknownFamily(t *testing.T) {
	d := New().Diagnose(NewRawError("boom", chromeStack))
	if d.Family != family.Unknown {
		t.Errorf("Family = %q, want unknown", d.Family)
	}
	if len(d.Lines) != 0 || len(d.Frames) != 0 {
		t.Errorf("Diagnose() = %+v, want no lines or frames", d)
	}
	if !d.HasStack {
		t.Error("HasStack = false, want true")
	}
}

func TestDiagnose_NoStack(t *testing.T) {
	d := New(WithEnvironment(detector.NewEnvironment("chrome"))).Diagnose(RawError{Message: "boom"})
	if d.HasStack {
		t.Error("HasStack = true, want false")
	}
	if d.Lines == nil || d.Frames == nil {
		t.Error("Lines and Frames must be non-nil")
	}
}

func TestDiagnose_Fault(t *testing.T) {
	n := New(
		WithEnvironment(detector.NewEnvironment("chrome")),
		WithMatcher(family.Chrome, &faultyMatcher{failAt: 3}),
	)
	d := n.Diagnose(NewRawError("boom", chromeStack))
	if d.Fault == "" {
		t.Error("Fault is empty, want matcher error")
	}
	if len(d.Frames) != 0 {
		t.Errorf("Frames = %v, want empty after fault", d.Frames)
	}
}

func TestDiagnose_NonExplainerMatcher(t *testing.T) {
	n := New(
		WithEnvironment(detector.NewEnvironment("chrome")),
		WithMatcher(family.Chrome, plainMatcher{}),
	)
	d := n.Diagnose(NewRawError("boom", "TypeError: boom\nat f http://x/a.js:0:3\nat g http://x/b.js:1:1"))

	want := []parser.Outcome{
		parser.OutcomeNoFrame,
		parser.OutcomeUnparsableCoordinate,
		parser.OutcomeFrame,
	}
	if diff := cmp.Diff(want, outcomes(d)); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if len(d.Frames) != 2 {
		t.Errorf("Frames = %v, want 2", d.Frames)
	}
}

// panickyExplainer panics when asked to explain the line at failAt.
type panickyExplainer struct {
	failAt int
	seen   int
}

func (p *panickyExplainer) Family() family.Family { return family.Chrome }

func (p *panickyExplainer) MatchLine(line string) (*parser.Frame, error) {
	return parser.ChromeMatcher{}.MatchLine(line)
}

func (p *panickyExplainer) Explain(line string) parser.Diagnosis {
	p.seen++
	if p.seen == p.failAt {
		panic("explain failed")
	}
	return parser.ChromeMatcher{}.Explain(line)
}

func TestDiagnose_ExplainPanicContained(t *testing.T) {
	n := New(
		WithEnvironment(detector.NewEnvironment("chrome")),
		WithMatcher(family.Chrome, &panickyExplainer{failAt: 3}),
	)

	d := n.Diagnose(NewRawError("boom", chromeStack))

	if !strings.Contains(d.Fault, "explain failed") {
		t.Errorf("Fault = %q, want recovered panic", d.Fault)
	}
	if len(d.Lines) != 2 {
		t.Errorf("Lines = %d, want 2 before the failing line", len(d.Lines))
	}
	if len(d.Frames) != 0 {
		t.Errorf("Frames = %v, want empty after fault", d.Frames)
	}
}

func TestDiagnose_LineSeparators(t *testing.T) {
	n := New(WithEnvironment(detector.NewEnvironment("chrome")))
	d := n.Diagnose(NewRawError("x", "TypeError: x\rat bar http://h/c.js:2:9\u2028at foo http://h/b.js:4:15"))

	want := []parser.Outcome{parser.OutcomeUnparsableLine, parser.OutcomeFrame, parser.OutcomeFrame}
	if diff := cmp.Diff(want, outcomes(d)); diff != "" {
		t.Errorf("outcomes mismatch (-want +got):\n%s", diff)
	}
	if len(d.Frames) != 2 {
		t.Errorf("Frames = %v, want 2", d.Frames)
	}
}

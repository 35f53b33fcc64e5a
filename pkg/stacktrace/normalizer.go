package stacktrace

import (
	"fmt"
	"log/slog"

	"github.com/ccollicutt/stackreport/pkg/detector"
	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/parser"
)

// Normalizer turns RawErrors into ErrorReports for one environment.
// It is immutable after New and safe for concurrent use.
type Normalizer struct {
	env      detector.Environment
	detector *detector.Detector
	matchers map[family.Family]parser.LineMatcher
	logger   *slog.Logger
}

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithEnvironment sets the environment used for family detection.
// Without it the environment is nil and every stack yields no frames.
func WithEnvironment(env detector.Environment) Option {
	return func(n *Normalizer) {
		n.env = env
	}
}

// WithDetector replaces the default family detector.
func WithDetector(d *detector.Detector) Option {
	return func(n *Normalizer) {
		if d != nil {
			n.detector = d
		}
	}
}

// WithMatcher registers m as the matcher for f, replacing any built-in one.
// Registrations for family.Unknown are ignored.
func WithMatcher(f family.Family, m parser.LineMatcher) Option {
	return func(n *Normalizer) {
		if m != nil && f != family.Unknown {
			n.matchers[f] = m
		}
	}
}

// WithLogger sets the slog logger for debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New creates a Normalizer with the built-in Chrome and Firefox matchers.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		detector: detector.New(),
		matchers: make(map[family.Family]parser.LineMatcher),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, f := range family.Known() {
		if m, ok := parser.MatcherFor(f); ok {
			n.matchers[f] = m
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Family detects the browser family of the configured environment.
func (n *Normalizer) Family() family.Family {
	return n.detector.Detect(n.env)
}

// ParseError normalizes raw. The message is copied unchanged.
func (n *Normalizer) ParseError(raw RawError) ErrorReport {
	return ErrorReport{
		Message: raw.Message,
		Stack:   n.BuildFrameList(raw.Stack),
	}
}

// BuildFrameList extracts the reportable frames from raw, in order.
//
// The result is never nil. It is empty when raw is nil, when the family is
// not recognized, or when any matcher fails; a failure never yields a
// partial list.
func (n *Normalizer) BuildFrameList(raw *string) parser.FrameList {
	if raw == nil {
		return parser.FrameList{}
	}

	f := n.Family()
	m, ok := n.matcher(f)
	if !ok {
		n.logger.Debug("no matcher for environment", "family", f)
		return parser.FrameList{}
	}

	frames, err := collect(f, m, parser.SplitLines(*raw))
	if err != nil {
		n.logger.Debug("discarding stack", "family", f, "error", err)
		return parser.FrameList{}
	}
	return frames
}

func (n *Normalizer) matcher(f family.Family) (parser.LineMatcher, bool) {
	if f == family.Unknown {
		return nil, false
	}
	m, ok := n.matchers[f]
	return m, ok
}

// collect runs m over every line and stops at the first fault.
func collect(f family.Family, m parser.LineMatcher, lines []string) (parser.FrameList, error) {
	frames := parser.FrameList{}
	for i, line := range lines {
		frame, err := matchLine(f, m, i+1, line)
		if err != nil {
			return nil, err
		}
		if frame != nil {
			frames = append(frames, *frame)
		}
	}
	return frames, nil
}

// matchLine calls m.MatchLine and turns errors and panics into a *FaultError.
func matchLine(f family.Family, m parser.LineMatcher, num int, line string) (frame *parser.Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame = nil
			err = &FaultError{Family: f, Line: num, Text: line, Err: fmt.Errorf("%w: %v", ErrMatcherPanic, r)}
		}
	}()

	frame, err = m.MatchLine(line)
	if err != nil {
		return nil, &FaultError{Family: f, Line: num, Text: line, Err: err}
	}
	return frame, nil
}

// ParseError normalizes raw for env using the default configuration.
func ParseError(raw RawError, env detector.Environment) ErrorReport {
	return New(WithEnvironment(env)).ParseError(raw)
}

// BuildFrameList extracts frames from raw for env using the default configuration.
func BuildFrameList(raw *string, env detector.Environment) parser.FrameList {
	return New(WithEnvironment(env)).BuildFrameList(raw)
}

// Package parser turns individual stack trace lines into structured frames.
//
// Each supported browser family owns one LineMatcher with its own pattern.
// The matchers share nothing but the LineMatcher interface and ValidateFrame:
// the two grammars only look alike by coincidence and are free to diverge.
package parser

import (
	"regexp"
	"strings"

	"github.com/ccollicutt/stackreport/pkg/family"
)

// Unresolved is the sentinel stored in Frame.Line or Frame.Column when the
// coordinate text is present but does not parse to a positive integer.
const Unresolved = -1

// Frame is one reportable stack entry.
type Frame struct {
	// Line is the 1-based line number, or Unresolved.
	Line int `json:"line"`

	// Column is the 1-based column number, or Unresolved.
	Column int `json:"column"`

	// Filename is the trimmed script location, usually a URL.
	Filename string `json:"filename"`
}

// FrameList is an ordered list of frames, most recent call first.
type FrameList []Frame

// LineMatcher extracts at most one frame from a single stack line.
type LineMatcher interface {
	// Family returns the browser family whose grammar this matcher implements.
	Family() family.Family

	// MatchLine parses one trimmed stack line.
	//
	// Return values:
	//   - (*Frame, nil): line matched and the frame is reportable
	//   - (nil, nil): line does not match, or matched but is not reportable
	//   - (nil, error): internal fault while matching
	MatchLine(line string) (*Frame, error)
}

// lineBreak matches the line terminators of a stack. The matcher patterns
// use '.', which in Go also matches CR and the Unicode separators.
var lineBreak = regexp.MustCompile("\r\n|[\n\r\u2028\u2029]")

// SplitLines splits a raw stack on line breaks (CRLF, LF, CR, U+2028,
// U+2029) and trims each line.
// Blank lines are kept so line numbers stay aligned with the input.
func SplitLines(raw string) []string {
	lines := lineBreak.Split(raw, -1)
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// MatcherFor returns the built-in matcher for f.
// It returns false for family.Unknown and any other family without a grammar.
func MatcherFor(f family.Family) (LineMatcher, bool) {
	switch f {
	case family.Chrome:
		return ChromeMatcher{}, true
	case family.Firefox:
		return FirefoxMatcher{}, true
	default:
		return nil, false
	}
}

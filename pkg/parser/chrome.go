package parser

import (
	"regexp"

	"github.com/ccollicutt/stackreport/pkg/family"
)

// ChromePattern matches one Chrome-style stack line,
// e.g. "at bar http://192.168.31.8:8000/c.js:2:9".
//
// Groups: 1 optional frame name, 2 location, 3 line, 4 column.
var ChromePattern = regexp.MustCompile(`at (\w+ )?(.+):(\d+):(\d+)`)

// ChromeMatcher parses Chrome-style stack lines.
type ChromeMatcher struct{}

// Family implements LineMatcher.
func (ChromeMatcher) Family() family.Family {
	return family.Chrome
}

// MatchLine implements LineMatcher.
func (ChromeMatcher) MatchLine(line string) (*Frame, error) {
	m := ChromePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	// m[1] is the frame name, which is not reported
	return ValidateFrame(m[2], m[3], m[4]), nil
}

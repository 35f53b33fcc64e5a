package parser

import (
	"regexp"

	"github.com/ccollicutt/stackreport/pkg/family"
)

// FirefoxPattern matches one Firefox-style stack line,
// e.g. "bar@http://192.168.31.8:8000/c.js:2:9".
//
// Groups: 1 optional "name@" prefix, 2 location, 3 line, 4 column.
var FirefoxPattern = regexp.MustCompile(`(\w+@)?(.+):(\d+):(\d+)`)

// FirefoxMatcher parses Firefox-style stack lines.
type FirefoxMatcher struct{}

// Family implements LineMatcher.
func (FirefoxMatcher) Family() family.Family {
	return family.Firefox
}

// MatchLine implements LineMatcher.
func (FirefoxMatcher) MatchLine(line string) (*Frame, error) {
	m := FirefoxPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, nil
	}
	return ValidateFrame(m[2], m[3], m[4]), nil
}

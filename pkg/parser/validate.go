package parser

import (
	"strconv"
	"strings"
)

// reportableExtensions is the allow-list of script extensions worth reporting.
// Matching is case-sensitive.
var reportableExtensions = map[string]struct{}{
	"js":   {},
	"html": {},
	"htm":  {},
}

// ValidateFrame builds a Frame from raw captured fields.
// It returns nil when filename has no reportable extension, which excludes
// native frames and anonymous or eval locations.
//
// Coordinates that do not parse to a positive integer become Unresolved;
// a literal "0" is treated the same as unparsable text, and so is a digit
// run too large for an int.
func ValidateFrame(filename, rawLine, rawColumn string) *Frame {
	if !IsReportable(filename) {
		return nil
	}
	return &Frame{
		Line:     parseCoordinate(rawLine),
		Column:   parseCoordinate(rawColumn),
		Filename: strings.TrimSpace(filename),
	}
}

// IsReportable reports whether filename ends in an allow-listed extension.
// The extension is the text after the last '.'; no '.' means no extension.
func IsReportable(filename string) bool {
	_, ok := reportableExtensions[Extension(filename)]
	return ok
}

// Extension returns the text after the last '.' in filename,
// or "" when filename contains no '.'.
func Extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}

// parseCoordinate returns Unresolved for anything that is not a positive
// int, including zero and digit runs too large for an int.
func parseCoordinate(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return Unresolved
	}
	return n
}

// Package family defines the browser families whose stack trace text
// conventions stackreport understands.
//
// It is separated from pkg/detector and pkg/parser so both can share the
// type without importing each other.
package family

import (
	"sort"
	"strings"
)

// Family identifies a browser-specific stack trace convention.
type Family string

const (
	// Chrome is the Chrome-style convention: "at [name ]location:line:column".
	Chrome Family = "chrome"

	// Firefox is the Firefox-style convention: "[name@]location:line:column".
	Firefox Family = "firefox"

	// Unknown is any environment that matches neither known family.
	Unknown Family = "unknown"
)

// known lists the families that have a line grammar.
var known = []Family{Chrome, Firefox}

// byName maps lowercase names to Family, including Unknown.
var byName = func() map[string]Family {
	m := make(map[string]Family, len(known)+1)
	for _, f := range known {
		m[string(f)] = f
	}
	m[string(Unknown)] = Unknown
	return m
}()

// Known returns the families that have a line grammar, in detection priority order.
func Known() []Family {
	out := make([]Family, len(known))
	copy(out, known)
	return out
}

// Names returns a sorted list of the known family names.
func Names() []string {
	names := make([]string, len(known))
	for i, f := range known {
		names[i] = string(f)
	}
	sort.Strings(names)
	return names
}

// Parse converts a name to a Family.
// It is case-insensitive and trims surrounding whitespace.
func Parse(name string) (Family, bool) {
	f, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// IsKnown reports whether f has a line grammar.
func (f Family) IsKnown() bool {
	return f == Chrome || f == Firefox
}

func (f Family) String() string {
	return string(f)
}

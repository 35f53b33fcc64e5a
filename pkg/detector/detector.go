// Package detector classifies an execution environment into a browser family.
//
// Detection is a pure function of an explicitly supplied Environment; there is
// no implicit global lookup. A nil environment is the non-browser case and
// always yields family.Unknown.
package detector

import "github.com/ccollicutt/stackreport/pkg/family"

// Environment is a read-only view of the ambient global object
// (conceptually a browser window).
type Environment interface {
	// Lookup returns the value of a global property and whether it is defined.
	// A defined property may hold a nil value.
	Lookup(name string) (any, bool)
}

// MapEnvironment is an Environment backed by a map of global properties.
type MapEnvironment map[string]any

// Lookup implements Environment.
func (m MapEnvironment) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// NewEnvironment returns a MapEnvironment with each named global defined.
func NewEnvironment(globals ...string) MapEnvironment {
	env := make(MapEnvironment, len(globals))
	for _, g := range globals {
		env[g] = true
	}
	return env
}

// Detector identifies browser families from environment markers.
type Detector struct {
	markers []Marker
}

// Option configures the Detector.
type Option func(*Detector)

// WithMarkers replaces the marker table. Order is detection priority.
// An empty list is ignored.
func WithMarkers(markers ...Marker) Option {
	return func(d *Detector) {
		if len(markers) > 0 {
			d.markers = markers
		}
	}
}

// New creates a new Detector with the default markers.
func New(opts ...Option) *Detector {
	d := &Detector{
		markers: DefaultMarkers(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Markers returns a copy of the marker table in priority order.
func (d *Detector) Markers() []Marker {
	out := make([]Marker, len(d.markers))
	copy(out, d.markers)
	return out
}

// Detect returns the family of the first marker present in env,
// or family.Unknown when env is nil or no marker is present.
func (d *Detector) Detect(env Environment) family.Family {
	if env == nil {
		return family.Unknown
	}
	for _, m := range d.markers {
		if hasProperty(env, m.Property) {
			return m.Family
		}
	}
	return family.Unknown
}

// Detect classifies env using the default markers.
func Detect(env Environment) family.Family {
	return defaultDetector.Detect(env)
}

var defaultDetector = New()

// hasProperty reports whether name is defined on env.
// A Lookup that panics counts as not defined.
func hasProperty(env Environment, name string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, ok = env.Lookup(name)
	return ok
}

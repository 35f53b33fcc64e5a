package detector

import (
	"testing"

	"github.com/ccollicutt/stackreport/pkg/family"
)

type panicEnvironment struct{}

func (panicEnvironment) Lookup(name string) (any, bool) {
	panic("property getter threw")
}

// firefoxOnlyGetterPanics panics for the chrome marker but exposes InstallTrigger.
type firefoxOnlyGetterPanics struct{}

func (firefoxOnlyGetterPanics) Lookup(name string) (any, bool) {
	if name == "chrome" {
		panic("access denied")
	}
	return struct{}{}, name == "InstallTrigger"
}

func TestDetector_Detect(t *testing.T) {
	tests := []struct {
		name string
		env  Environment
		want family.Family
	}{
		{"nil environment", nil, family.Unknown},
		{"empty environment", MapEnvironment{}, family.Unknown},
		{"chrome marker", NewEnvironment("chrome"), family.Chrome},
		{"firefox marker", NewEnvironment("InstallTrigger"), family.Firefox},
		{"both markers, chrome wins", NewEnvironment("InstallTrigger", "chrome"), family.Chrome},
		{"marker defined as nil", MapEnvironment{"chrome": nil}, family.Chrome},
		{"unrelated globals", NewEnvironment("document", "navigator"), family.Unknown},
		{"marker name is case-sensitive", NewEnvironment("Chrome", "installtrigger"), family.Unknown},
		{"panicking lookup", panicEnvironment{}, family.Unknown},
		{"panicking chrome getter falls through", firefoxOnlyGetterPanics{}, family.Firefox},
	}

	d := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Detect(tt.env); got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetect_PackageLevel(t *testing.T) {
	if got := Detect(NewEnvironment("chrome")); got != family.Chrome {
		t.Errorf("Detect() = %q, want %q", got, family.Chrome)
	}
	if got := Detect(nil); got != family.Unknown {
		t.Errorf("Detect(nil) = %q, want %q", got, family.Unknown)
	}
}

func TestDetector_WithMarkers(t *testing.T) {
	d := New(WithMarkers(
		Marker{Family: family.Firefox, Property: "netscape"},
		Marker{Family: family.Chrome, Property: "webkitURL"},
	))

	env := NewEnvironment("webkitURL", "netscape")
	if got := d.Detect(env); got != family.Firefox {
		t.Errorf("Detect() = %q, want %q", got, family.Firefox)
	}

	// Default markers are replaced, not extended
	if got := d.Detect(NewEnvironment("chrome")); got != family.Unknown {
		t.Errorf("Detect() = %q, want %q", got, family.Unknown)
	}
}

func TestDetector_WithMarkers_Empty(t *testing.T) {
	d := New(WithMarkers())
	if len(d.Markers()) != len(DefaultMarkers()) {
		t.Errorf("Markers() = %d, want default %d", len(d.Markers()), len(DefaultMarkers()))
	}
}

func TestDefaultMarkers(t *testing.T) {
	markers := DefaultMarkers()
	if len(markers) != 2 {
		t.Fatalf("DefaultMarkers() = %d entries, want 2", len(markers))
	}
	if markers[0].Family != family.Chrome || markers[0].Property != "chrome" {
		t.Errorf("markers[0] = %+v, want chrome first", markers[0])
	}
	if markers[1].Family != family.Firefox || markers[1].Property != "InstallTrigger" {
		t.Errorf("markers[1] = %+v, want InstallTrigger second", markers[1])
	}
	for _, m := range markers {
		if m.Description == "" {
			t.Errorf("marker %s has no description", m.Property)
		}
	}
}

func TestMapEnvironment_Lookup(t *testing.T) {
	env := MapEnvironment{"chrome": map[string]any{"runtime": nil}}

	v, ok := env.Lookup("chrome")
	if !ok || v == nil {
		t.Errorf("Lookup(chrome) = %v, %v, want value, true", v, ok)
	}
	if _, ok := env.Lookup("InstallTrigger"); ok {
		t.Error("Lookup(InstallTrigger) ok = true, want false")
	}

	var nilEnv MapEnvironment
	if _, ok := nilEnv.Lookup("chrome"); ok {
		t.Error("nil MapEnvironment Lookup ok = true, want false")
	}
}

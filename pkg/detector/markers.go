package detector

import "github.com/ccollicutt/stackreport/pkg/family"

// Marker is a global property whose presence identifies a browser family.
type Marker struct {
	Family      family.Family // Family signalled by the property
	Property    string        // Global property name looked up on the environment
	Description string        // Human-readable note for detect output
}

// DefaultMarkers returns the built-in family markers in priority order.
// Chrome is checked before Firefox; the first marker present wins.
func DefaultMarkers() []Marker {
	return []Marker{
		{
			Family:      family.Chrome,
			Property:    "chrome",
			Description: "window.chrome is defined in Chromium-based browsers",
		},
		{
			Family:      family.Firefox,
			Property:    "InstallTrigger",
			Description: "window.InstallTrigger is defined in Gecko-based browsers",
		},
	}
}

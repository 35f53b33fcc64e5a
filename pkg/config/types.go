// Package config provides configuration loading and validation for stackreport.
package config

import (
	"github.com/ccollicutt/stackreport/pkg/detector"
	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/source"
)

// Config is the root configuration structure loaded from YAML or TOML.
type Config struct {
	// Sources lists error files or glob patterns.
	Sources []string `yaml:"sources" toml:"sources"`

	// InputFormat is jsonl, text or auto.
	InputFormat string `yaml:"input_format" toml:"input_format"`

	// Output is the report format, text or json.
	Output string `yaml:"output" toml:"output"`

	// Environment describes the runtime the errors were captured in.
	Environment EnvironmentConfig `yaml:"environment" toml:"environment"`

	// Markers optionally replaces the family detection table.
	Markers []MarkerConfig `yaml:"markers,omitempty" toml:"markers,omitempty"`

	// populated during validation
	format  source.Format
	browser family.Family
}

// EnvironmentConfig describes the global object seen by the family detector.
type EnvironmentConfig struct {
	// Browser is a shortcut that defines the marker global of one family.
	Browser string `yaml:"browser" toml:"browser"`

	// Globals lists global property names defined in the environment.
	// When set, Browser is ignored.
	Globals []string `yaml:"globals,omitempty" toml:"globals,omitempty"`
}

// MarkerConfig maps a global property to a browser family.
type MarkerConfig struct {
	Family      string `yaml:"family" toml:"family"`
	Property    string `yaml:"property" toml:"property"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
}

// Format returns the validated input format.
func (c *Config) Format() source.Format {
	return c.format
}

// Browser returns the validated browser family.
func (c *Config) Browser() family.Family {
	return c.browser
}

// DetectorMarkers returns the marker table, or the defaults when none is configured.
func (c *Config) DetectorMarkers() []detector.Marker {
	if len(c.Markers) == 0 {
		return detector.DefaultMarkers()
	}
	markers := make([]detector.Marker, 0, len(c.Markers))
	for _, m := range c.Markers {
		f, _ := family.Parse(m.Family)
		markers = append(markers, detector.Marker{
			Family:      f,
			Property:    m.Property,
			Description: m.Description,
		})
	}
	return markers
}

// Detector builds a detector from the marker table.
func (c *Config) Detector() *detector.Detector {
	return detector.New(detector.WithMarkers(c.DetectorMarkers()...))
}

// BuildEnvironment returns the environment described by the configuration.
//
// Explicit globals win. Otherwise Browser defines the first marker property
// of that family; family.Unknown yields an environment with no globals.
func (c *Config) BuildEnvironment() detector.MapEnvironment {
	if len(c.Environment.Globals) > 0 {
		return detector.NewEnvironment(c.Environment.Globals...)
	}
	for _, m := range c.DetectorMarkers() {
		if m.Family == c.browser {
			return detector.NewEnvironment(m.Property)
		}
	}
	return detector.MapEnvironment{}
}

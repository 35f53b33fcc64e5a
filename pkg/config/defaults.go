package config

import (
	"os"
	"strings"
)

// Default values for configuration.
const (
	DefaultInputFormat = "auto"
	DefaultOutput      = "text"
	DefaultBrowser     = "chrome"
)

// Environment variable names.
const (
	EnvSources = "STACKREPORT_SOURCES"
	EnvBrowser = "STACKREPORT_BROWSER"
	EnvOutput  = "STACKREPORT_OUTPUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sources:     []string{},
		InputFormat: DefaultInputFormat,
		Output:      DefaultOutput,
		Environment: EnvironmentConfig{
			Browser: DefaultBrowser,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvSources); v != "" {
		var sources []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				sources = append(sources, s)
			}
		}
		c.Sources = sources
	}
	if v := os.Getenv(EnvBrowser); v != "" {
		c.Environment.Browser = v
		c.Environment.Globals = nil
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
}

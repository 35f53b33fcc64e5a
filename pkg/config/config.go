package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/stackreport/pkg/family"
	"github.com/ccollicutt/stackreport/pkg/source"
)

// Load reads and validates a configuration file.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns the validated defaults when path is empty.
func LoadOrDefault(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
		return nil
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks a configuration for errors and normalizes its values.
func Validate(cfg *Config) error {
	format, err := source.ParseFormat(cfg.InputFormat)
	if err != nil {
		return fmt.Errorf("input_format: %w", err)
	}
	cfg.format = format
	cfg.InputFormat = string(format)

	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))
	switch cfg.Output {
	case "":
		cfg.Output = DefaultOutput
	case "text", "json":
	default:
		return fmt.Errorf("output: invalid format %q (must be text or json)", cfg.Output)
	}

	for i, s := range cfg.Sources {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("sources[%d]: empty path", i)
		}
	}

	for i := range cfg.Markers {
		if err := validateMarker(&cfg.Markers[i]); err != nil {
			return fmt.Errorf("markers[%d] (%s): %w", i, cfg.Markers[i].Property, err)
		}
	}

	if err := validateEnvironment(&cfg.Environment); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	cfg.browser, _ = family.Parse(cfg.Environment.Browser)

	return nil
}

func validateMarker(m *MarkerConfig) error {
	m.Property = strings.TrimSpace(m.Property)
	if m.Property == "" {
		return errors.New("property is required")
	}

	f, ok := family.Parse(m.Family)
	if !ok || !f.IsKnown() {
		return fmt.Errorf("invalid family %q (must be one of %s)", m.Family, strings.Join(family.Names(), ", "))
	}
	m.Family = string(f)

	return nil
}

func validateEnvironment(env *EnvironmentConfig) error {
	for i, g := range env.Globals {
		g = strings.TrimSpace(g)
		if g == "" {
			return fmt.Errorf("globals[%d]: empty name", i)
		}
		env.Globals[i] = g
	}

	if env.Browser == "" {
		env.Browser = string(family.Unknown)
	}
	f, ok := family.Parse(env.Browser)
	if !ok {
		return fmt.Errorf("invalid browser %q (must be chrome, firefox or unknown)", env.Browser)
	}
	env.Browser = string(f)

	return nil
}

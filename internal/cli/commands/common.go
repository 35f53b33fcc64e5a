// Package commands implements the stackreport subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/pkg/config"
	"github.com/ccollicutt/stackreport/pkg/source"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// EnvironmentOptions selects a configuration file and overrides the
// environment it describes.
type EnvironmentOptions struct {
	ConfigFile string
	Browser    string
	Globals    []string
	Format     string
}

func (o *EnvironmentOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigFile, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	cmd.Flags().StringVarP(&o.Browser, "browser", "b", "", "Browser family of the environment (chrome|firefox|unknown)")
	cmd.Flags().StringSliceVar(&o.Globals, "global", nil, "Global property defined in the environment (can be repeated)")
}

func (o *EnvironmentOptions) addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Format, "format", "f", "", "Input format (jsonl|text|auto)")
}

// load reads the configuration and applies flag overrides.
func (o *EnvironmentOptions) load(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(ctx, o.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	changed := false
	if o.Browser != "" {
		cfg.Environment.Browser = o.Browser
		cfg.Environment.Globals = nil
		changed = true
	}
	if len(o.Globals) > 0 {
		cfg.Environment.Globals = append([]string(nil), o.Globals...)
		changed = true
	}
	if o.Format != "" {
		cfg.InputFormat = o.Format
		changed = true
	}
	if changed {
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	return cfg, nil
}

// resolveSources expands args, or the configured sources when args is empty.
func resolveSources(args []string, cfg *config.Config) ([]string, error) {
	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Sources
	}
	if len(patterns) == 0 {
		return nil, errors.New("no input files: pass files as arguments or set sources in the config")
	}

	files, err := source.ExpandGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding sources: %w", err)
	}
	return files, nil
}

func newNormalizer(cfg *config.Config, logger *slog.Logger) *stacktrace.Normalizer {
	return stacktrace.New(
		stacktrace.WithEnvironment(cfg.BuildEnvironment()),
		stacktrace.WithDetector(cfg.Detector()),
		stacktrace.WithLogger(logger),
	)
}

// commandLogger returns a debug logger on stderr when --debug is set.
func commandLogger(cmd *cobra.Command) *slog.Logger {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.DiscardHandler)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

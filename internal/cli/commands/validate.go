package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/pkg/config"
	"github.com/ccollicutt/stackreport/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a stackreport configuration file without parsing any errors.

Checks:
  - YAML or TOML syntax
  - Input and output format names
  - Browser family and detection markers
  - Source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	env := cfg.BuildEnvironment()
	detected := cfg.Detector().Detect(env)

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sources:      %d pattern(s)\n", len(cfg.Sources))
	fmt.Fprintf(w, "  Input format: %s\n", cfg.Format())
	fmt.Fprintf(w, "  Output:       %s\n", cfg.Output)
	fmt.Fprintf(w, "  Environment:  %s\n", detected)

	fmt.Fprintf(w, "\nMarkers:\n")
	for i, m := range cfg.DetectorMarkers() {
		fmt.Fprintf(w, "  %d. %s -> %s\n", i+1, m.Property, m.Family)
		if m.Description != "" {
			fmt.Fprintf(w, "     %s\n", m.Description)
		}
	}

	if !detected.IsKnown() {
		fmt.Fprintf(w, "\nWarning: environment matches no marker, every stack will produce no frames\n")
	}

	if len(cfg.Sources) == 0 {
		return nil
	}

	// Missing sources are warnings only
	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding source patterns: %v\n", err)
		return nil
	}
	fmt.Fprintf(w, "\nFiles matched: %d\n", len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			fmt.Fprintf(w, "  - %s (warning: %v)\n", f, err)
			continue
		}
		fmt.Fprintf(w, "  - %s (%s)\n", f, formatFor(cfg, f))
	}

	return nil
}

func formatFor(cfg *config.Config, path string) source.Format {
	if cfg.Format() == source.FormatAuto {
		return source.FormatForPath(path)
	}
	return cfg.Format()
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/pkg/detector"
	"github.com/ccollicutt/stackreport/pkg/family"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	EnvironmentOptions

	Output      string
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [global...]",
		Short: "Detect the browser family of an environment",
		Long: `Report which browser family the detector assigns to an environment.

The environment is the set of global properties defined on the host's global
object. Pass property names as arguments, or describe the environment with
--browser, --global or a configuration file.

Markers are checked in priority order and the first one present wins:
  chrome          -> chrome
  InstallTrigger  -> firefox

Optionally generates a starter config file with --write-config.

Example:
  stackreport detect chrome document
  stackreport detect --browser firefox -o json
  stackreport detect -w stackreport.yaml InstallTrigger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

// MarkerStatus is one detection marker and whether the environment defines it.
type MarkerStatus struct {
	Family      family.Family `json:"family"`
	Property    string        `json:"property"`
	Description string        `json:"description,omitempty"`
	Present     bool          `json:"present"`
}

// DetectResult is the outcome of the detect command.
type DetectResult struct {
	Family  family.Family  `json:"family"`
	Globals []string       `json:"globals"`
	Markers []MarkerStatus `json:"markers"`
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	opts.Globals = append(opts.Globals, args...)

	cfg, err := opts.load(commandContext(cmd))
	if err != nil {
		return err
	}

	result := detect(cfg.Detector(), cfg.BuildEnvironment())

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(result, opts.WriteConfig, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	case "text":
		outputDetectText(result, cmd.OutOrStdout())
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func detect(d *detector.Detector, env detector.MapEnvironment) *DetectResult {
	result := &DetectResult{
		Family:  d.Detect(env),
		Globals: make([]string, 0, len(env)),
	}
	for name := range env {
		result.Globals = append(result.Globals, name)
	}
	sort.Strings(result.Globals)

	for _, m := range d.Markers() {
		_, present := env.Lookup(m.Property)
		result.Markers = append(result.Markers, MarkerStatus{
			Family:      m.Family,
			Property:    m.Property,
			Description: m.Description,
			Present:     present,
		})
	}
	return result
}

func outputDetectText(result *DetectResult, w io.Writer) {
	fmt.Fprintln(w, "=== Browser Family Detection ===")
	fmt.Fprintln(w)

	globals := "(none)"
	if len(result.Globals) > 0 {
		globals = strings.Join(result.Globals, ", ")
	}
	fmt.Fprintf(w, "Globals: %s\n", globals)
	fmt.Fprintf(w, "Family:  %s\n", result.Family)
	fmt.Fprintln(w)

	if !result.Family.IsKnown() {
		fmt.Fprintln(w, "No marker is defined: every stack will produce an empty frame list.")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Markers (priority order):")
	for i, m := range result.Markers {
		state := ""
		if m.Present {
			state = "  (present)"
		}
		fmt.Fprintf(w, "  %d. %-16s -> %s%s\n", i+1, m.Property, m.Family, state)
	}
}

// writeStarterConfig writes a config describing the detected environment.
func writeStarterConfig(result *DetectResult, configPath string, w io.Writer) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, []byte(generateStarterConfig(result)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(result *DetectResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `# stackreport configuration
# Generated by: stackreport detect
# Detected family: %s

sources:
  # Files or globs of raw errors:
  # - errors/*.jsonl

input_format: auto
output: text

environment:
  browser: %s
`, result.Family, result.Family)

	if len(result.Globals) > 0 {
		sb.WriteString("  globals:\n")
		for _, g := range result.Globals {
			fmt.Fprintf(&sb, "    - %s\n", g)
		}
	}

	sb.WriteString(`
# Replace the detection table (priority order):
# markers:
#   - family: chrome
#     property: chrome
#   - family: firefox
#     property: InstallTrigger
`)
	return sb.String()
}

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/pkg/output"
	"github.com/ccollicutt/stackreport/pkg/parser"
	"github.com/ccollicutt/stackreport/pkg/source"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	EnvironmentOptions

	Output  string
	Verbose bool
}

// ErrorDiagnosis is the diagnosis of one raw error read from a file.
type ErrorDiagnosis struct {
	Source  string `json:"source"`
	LineNum int    `json:"line"`
	stacktrace.Diagnosis
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose <file>",
		Short: "Explain how each stack line is handled",
		Long: `Explain, line by line, why each stack line did or did not produce a frame.

Outcomes:
  frame                  - reported with both coordinates
  unparsable_coordinate  - reported, but line or column is unresolved (-1)
  unreportable_frame     - matched, but the file is not .js, .html or .htm
  unparsable_line        - does not match the browser family's grammar
  no_frame               - dropped by a custom matcher

Use it to find out why a stack produces fewer frames than expected.

Example:
  stackreport diagnose crash.txt
  stackreport diagnose -v --browser firefox errors.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	opts.addFormatFlag(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show captured fields for every line")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string, opts *DiagnoseOptions) error {
	ctx := commandContext(cmd)

	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	cfg, err := opts.load(ctx)
	if err != nil {
		return err
	}

	files, err := resolveSources(args, cfg)
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	src := source.NewFileSource(files, cfg.Format(), source.WithLogger(logger))
	defer src.Close()

	records, err := source.ReadAll(ctx, src)
	if err != nil {
		return fmt.Errorf("reading errors: %w", err)
	}

	n := newNormalizer(cfg, logger)
	diagnoses := make([]ErrorDiagnosis, 0, len(records))
	for _, rec := range records {
		diagnoses = append(diagnoses, ErrorDiagnosis{
			Source:    rec.Source,
			LineNum:   rec.LineNum,
			Diagnosis: n.Diagnose(rec.Raw),
		})
	}

	if opts.Output == "json" {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(diagnoses)
	}

	printDiagnoses(diagnoses, opts, cmd.OutOrStdout())
	return nil
}

func printDiagnoses(diagnoses []ErrorDiagnosis, opts *DiagnoseOptions, w io.Writer) {
	fmt.Fprintln(w, "=== Stack Diagnostics ===")
	fmt.Fprintln(w)

	totals := make(map[parser.Outcome]int)

	for _, d := range diagnoses {
		fmt.Fprintf(w, "[%s:%d] %s\n", d.Source, d.LineNum, d.Message)
		fmt.Fprintf(w, "    Family: %s\n", d.Family)

		switch {
		case !d.HasStack:
			fmt.Fprintln(w, "    No stack supplied")
		case !d.Family.IsKnown():
			fmt.Fprintln(w, "    Browser family not detected, stack skipped")
			fmt.Fprintln(w, "      Hint: set --browser or environment.browser in the config")
		}

		for _, l := range d.Lines {
			totals[l.Outcome]++
			if l.Text == "" && !opts.Verbose {
				continue
			}
			fmt.Fprintf(w, "    %3d  %-22s %s\n", l.Number, l.Outcome, l.Text)
			if l.Frame != nil {
				fmt.Fprintf(w, "         -> %s\n", output.FrameLocation(*l.Frame))
			}
			if opts.Verbose && l.Filename != "" {
				fmt.Fprintf(w, "         filename=%q line=%q column=%q\n", l.Filename, l.RawLine, l.RawColumn)
			}
		}

		if d.Fault != "" {
			fmt.Fprintf(w, "    Fault: %s\n", d.Fault)
			fmt.Fprintln(w, "      All frames were discarded")
		}
		fmt.Fprintf(w, "    Frames: %d\n", len(d.Frames))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d errors, %d frame lines, %d unresolved coordinates, %d unreportable, %d unparsable\n",
		len(diagnoses),
		totals[parser.OutcomeFrame],
		totals[parser.OutcomeUnparsableCoordinate],
		totals[parser.OutcomeUnreportableFrame],
		totals[parser.OutcomeUnparsableLine]+totals[parser.OutcomeNoFrame])
}

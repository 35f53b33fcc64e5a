package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/pkg/output"
	"github.com/ccollicutt/stackreport/pkg/source"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	EnvironmentOptions

	Output      string
	Verbose     bool
	Quiet       bool
	FailOnEmpty bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Normalize raw errors into structured stack frames",
		Long: `Read raw errors from files and report the file, line and column of every
reportable stack frame.

Input formats:
  jsonl - one {"message": "...", "stack": "..."} object per line
  text  - the whole file is one stack; its first non-empty line is the message
  auto  - jsonl for .jsonl, .ndjson and .json files, text otherwise

Only frames in .js, .html and .htm files are reported. Stacks captured in an
environment whose browser family cannot be detected produce no frames.

Exit codes:
  0 - Success
  1 - A stack produced no frames (with --fail-on-empty)
  2 - Configuration or runtime error

Example:
  stackreport parse errors.jsonl
  stackreport parse --browser firefox -o json crash.txt
  stackreport parse -c stackreport.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	opts.addFormatFlag(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json), defaults to the config value")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Include errors without frames")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.FailOnEmpty, "fail-on-empty", false, "Exit 1 when a stack produces no frames")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := commandContext(cmd)
	start := time.Now()
	ExitCode = 0

	cfg, err := opts.load(ctx)
	if err != nil {
		return err
	}

	files, err := resolveSources(args, cfg)
	if err != nil {
		return err
	}

	outputName := cfg.Output
	if opts.Output != "" {
		outputName = opts.Output
	}
	formatter, err := output.NewFormatter(outputName, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	src := source.NewFileSource(files, cfg.Format(), source.WithLogger(logger))
	defer src.Close()

	n := newNormalizer(cfg, logger)

	var results []*output.Result
	for {
		rec, err := src.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading errors: %w", err)
		}
		results = append(results, newResult(n, rec))
	}

	report := output.NewReport(results, output.Metadata{
		ConfigFile: opts.ConfigFile,
		Family:     n.Family(),
		Sources:    files,
		AnalyzedAt: time.Now(),
		Duration:   time.Since(start),
	})

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if opts.FailOnEmpty && report.HasEmptyStacks() {
		ExitCode = 1
	}

	return nil
}

func newResult(n *stacktrace.Normalizer, rec *source.Record) *output.Result {
	return &output.Result{
		Source:      rec.Source,
		LineNum:     rec.LineNum,
		HasStack:    rec.Raw.HasStack(),
		ErrorReport: n.ParseError(rec.Raw),
	}
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/internal/tailer"
	"github.com/ccollicutt/stackreport/pkg/output"
	"github.com/ccollicutt/stackreport/pkg/stacktrace"
)

// TailOptions holds command-line options for the tail command.
type TailOptions struct {
	EnvironmentOptions

	Output    string
	FromStart bool
	Poll      bool
	Follow    bool
}

// NewTailCommand creates the tail command.
func NewTailCommand() *cobra.Command {
	opts := &TailOptions{}

	cmd := &cobra.Command{
		Use:   "tail <file>",
		Short: "Follow a JSON Lines file and normalize errors as they arrive",
		Long: `Follow a JSON Lines file of raw errors and print one normalized report
per appended error until interrupted.

Each line must be a {"message": "...", "stack": "..."} object. Blank and
malformed lines are reported on stderr and skipped.

Example:
  stackreport tail /var/log/app/client-errors.jsonl
  stackreport tail --from-start --browser firefox -o text errors.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTail(cmd, args, opts)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "jsonl", "Output format (jsonl|text)")
	cmd.Flags().BoolVar(&opts.FromStart, "from-start", false, "Read existing errors before following")
	cmd.Flags().BoolVar(&opts.Poll, "poll", false, "Poll for changes instead of using inotify")
	cmd.Flags().BoolVar(&opts.Follow, "follow", true, "Keep reading as the file grows")

	return cmd
}

func runTail(cmd *cobra.Command, args []string, opts *TailOptions) error {
	if opts.Output != "jsonl" && opts.Output != "text" {
		return fmt.Errorf("unknown output format %q (use jsonl or text)", opts.Output)
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.load(ctx)
	if err != nil {
		return err
	}

	tcfg := tailer.DefaultConfig()
	tcfg.Follow = opts.Follow
	tcfg.Poll = opts.Poll
	tcfg.FromStart = opts.FromStart

	t, err := tailer.New(ctx, args[0], tcfg)
	if err != nil {
		return err
	}
	defer t.Stop()

	n := newNormalizer(cfg, commandLogger(cmd))
	return followRecords(ctx, t, n, opts.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// followRecords writes one result per record until the tailer ends or ctx is done.
func followRecords(ctx context.Context, t *tailer.Tailer, n *stacktrace.Normalizer, format string, w, errW io.Writer) error {
	rw := output.NewResultWriter(w)
	errs := t.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			fmt.Fprintf(errW, "Warning: %v\n", err)
		case rec, ok := <-t.Records():
			if !ok {
				return nil
			}
			result := newResult(n, rec)
			if format == "text" {
				writeResultText(result, w)
				continue
			}
			if err := rw.Write(result); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
		}
	}
}

func writeResultText(r *output.Result, w io.Writer) {
	fmt.Fprintf(w, "[%s:%d] %s\n", r.Source, r.LineNum, r.Message)
	for _, frame := range r.Stack {
		fmt.Fprintf(w, "  at %s\n", output.FrameLocation(frame))
	}
}

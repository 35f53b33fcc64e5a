// Package cli provides the command-line interface for stackreport.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/stackreport/internal/cli/commands"
	"github.com/ccollicutt/stackreport/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Unknown first arguments may be plugin commands
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					return plugins.Execute(pluginPath, os.Args[2:])
				}
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// SilenceErrors prevents Cobra from printing this
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackreport",
		Short: "Normalize browser stack traces into structured frames",
		Long: `stackreport turns raw browser errors into a uniform report of stack frames.

For every error it reports the message and, for each reportable frame,
the script file, line and column. The stack grammar is chosen by the
browser family detected from the environment the error was captured in:
  - chrome   "    at fn (https://host/app.js:10:5)"
  - firefox  "fn@https://host/app.js:10:5"

Only frames in .js, .html and .htm files are reported.

PLUGINS:
  Plugins are standalone binaries named stackreport-<command> that are
  automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the stackreport binary
    2. $STACKREPORT_PLUGIN_DIR, or ~/.stackreport/plugins/
    3. Anywhere in PATH

  Known plugins:
    sourcemap    Resolve frames to original sources using source maps`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Log parser decisions to stderr")

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewTailCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

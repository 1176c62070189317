package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	NoColor bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kmemtest CLI.
// Invoked without a subcommand it runs the harness.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RunOptions{RootOptions: &RootOptions{}})
}

func newRootCommand(runOpts *RunOptions) *cobra.Command {
	opts := runOpts.RootOptions

	cmd := &cobra.Command{
		Use:   "kmemtest",
		Short: "kmemtest - PIP-OS memory primitive tests",
		Long: `Compile the kernel memory primitives (k_memcmp, k_memcpy, k_strlen,
memset) into a shared object, load it into the test process and check each
routine against a fixed case table.

Exit codes:
  0 - All checks passed
  1 - A check failed or the module did not compile
  2 - Command error (bad flags, unreadable case file, database error)

Examples:
  kmemtest
  kmemtest --source src/kernel/k_libc/k_string.c --cflags=-ffreestanding
  kmemtest --fuzz 1000 --seed 42
  kmemtest --db ./kmemtest.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(runOpts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored output")

	addRunFlags(cmd, runOpts)

	// Flag parse errors are command errors; subcommands inherit this.
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSourceCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pipos/kmemtest/internal/kstring"
)

// NewSourceCommand creates the source command.
func NewSourceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Print the built-in reference C source",
		Long: `Print the reference implementation that kmemtest compiles when no
--source files are given. Useful as a starting point for a kernel port.

Example:
  kmemtest source > k_string.c`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.Format == "json" {
				out := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
				return out.Success(map[string]any{
					"file":    kstring.SourceFile,
					"symbols": kstring.Symbols(),
					"source":  kstring.Source(),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), kstring.Source())
			return nil
		},
	}
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, injected at build time via -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// newVersionCmd constructs `kensaku version`.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kensaku version, git commit, and build date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kensaku %s (commit: %s, built: %s)\n", Version, Commit, BuildDate)
		},
	}
}

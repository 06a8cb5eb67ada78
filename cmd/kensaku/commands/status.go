package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kensaku/internal/cli"
)

// newStatusCmd constructs `kensaku status`, which prints a running server's store statistics.
func newStatusCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show store statistics of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			client, err := opts.client()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			return cli.WriteStats(cmd.OutOrStdout(), stats, format)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or json")
	return cmd
}

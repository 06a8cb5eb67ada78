package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kensaku/internal/cli"
)

// newIngestCmd constructs `kensaku ingest`, which uploads files to a running server.
func newIngestCmd(opts *rootOptions) *cobra.Command {
	var tenant string
	var extensions []string

	cmd := &cobra.Command{
		Use:   "ingest [flags] <file-or-directory>...",
		Short: "Upload documents to a running server",
		Long: `Upload files to a running kensaku server for text extraction, chunking,
embedding, and indexing.

Directories are walked recursively; only files whose extension is listed in
--ext (default: watch.extensions from the config) are uploaded. Files named
explicitly are always uploaded. A failure on one file does not stop the rest.

Examples:
  kensaku ingest report.pdf notes.md
  kensaku ingest --tenant acme ./contracts
  kensaku ingest --ext .pdf --ext .docx ~/Documents`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("ext") {
				cfg, _, err := opts.resolveConfig()
				if err != nil {
					return fmt.Errorf("ingest: %w", err)
				}
				extensions = cfg.Watch.Extensions
			}
			files, err := collectFiles(args, extensions)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			if len(files) == 0 {
				return errors.New("ingest: no matching files")
			}
			client, err := opts.client()
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			var failed int
			for _, path := range files {
				content, err := os.ReadFile(path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
					continue
				}
				resp, err := client.Ingest(cmd.Context(), path, content, tenant)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed++
					continue
				}
				cli.WriteIngestResult(cmd.OutOrStdout(), path, resp)
			}
			if failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant to tag every passage with (empty: visible to all tenants)")
	cmd.Flags().StringSliceVar(&extensions, "ext", nil, "file extensions to include when walking directories")
	return cmd
}

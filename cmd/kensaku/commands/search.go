package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kensaku/internal/cli"
	"github.com/hyperjump/kensaku/internal/models"
)

// newSearchCmd constructs `kensaku search`, which queries a running server.
func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		limit       int
		tenant      string
		keywordOnly bool
		vectorOnly  bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "search [flags] <query>",
		Short: "Search a running server",
		Long: `Search the documents held by a running kensaku server.

The query is all positional arguments joined by spaces, so multi-word queries
work with or without quotes. By default the query is embedded by the server
and ranked by the hybrid blend of vector similarity and word overlap.

Examples:
  kensaku search quarterly revenue
  kensaku search --tenant acme "staffing plan"
  kensaku search --vector-only neural networks
  kensaku search --keyword --output json invoice`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := buildSearchQuery(args)
			if query == "" {
				return errors.New("search: query must not be empty")
			}
			if keywordOnly && vectorOnly {
				return errors.New("search: --keyword and --vector-only are mutually exclusive")
			}
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			client, err := opts.client()
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			var topK *int
			if cmd.Flags().Changed("limit") {
				topK = &limit
			}

			var resp *models.SearchResponse
			if keywordOnly {
				resp, err = client.SearchKeyword(cmd.Context(), &models.KeywordSearchRequest{Query: query, TopK: topK, TenantID: tenant})
			} else {
				hybrid := !vectorOnly
				resp, err = client.SearchText(cmd.Context(), &models.TextSearchRequest{Query: query, TopK: topK, Hybrid: &hybrid, TenantID: tenant})
			}
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			return cli.WriteSearchResults(cmd.OutOrStdout(), resp, format)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", models.DefaultTopK, "number of results")
	cmd.Flags().StringVar(&tenant, "tenant", "", "restrict results to this tenant plus untagged documents")
	cmd.Flags().BoolVar(&keywordOnly, "keyword", false, "use the keyword index instead of embeddings")
	cmd.Flags().BoolVar(&vectorOnly, "vector-only", false, "rank by vector similarity alone")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, compact, or json")
	return cmd
}

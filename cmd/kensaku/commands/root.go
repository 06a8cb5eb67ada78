// Package commands defines the Cobra command tree for the kensaku binary.
package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kensaku/internal/cli"
	"github.com/hyperjump/kensaku/internal/config"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "/usr/local/etc/kensaku/config.yaml"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	serverURL  string
	timeout    time.Duration
}

// NewRootCmd constructs the root command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "kensaku",
		Short: "In-memory hybrid vector and keyword retrieval server",
		Long: `kensaku stores embedding vectors with metadata in memory and answers
vector, hybrid (vector + lexical overlap), and keyword queries, optionally
scoped to a tenant. Untagged vectors are visible to every tenant.

Run 'kensaku serve' to start the HTTP server. The search, ingest, and status
commands talk to a running server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", DefaultConfigPath, "config file path (config.yaml in the working directory is preferred when left at the default)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "server URL for client commands (default: derived from the config's server host and port)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "client request timeout")

	root.AddCommand(
		newServeCmd(opts),
		newSearchCmd(opts),
		newIngestCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return root
}

// client builds an HTTP client for the configured server.
func (o *rootOptions) client() (*cli.Client, error) {
	url := o.serverURL
	if url == "" {
		cfg, _, err := loadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
		url = "http://" + cfg.Server.Address()
	}
	return cli.NewClient(url, o.timeout), nil
}

// resolveConfig loads the config and applies the --debug override.
func (o *rootOptions) resolveConfig() (*config.Config, string, error) {
	cfg, path, err := loadConfig(o.configPath)
	if err != nil {
		return nil, "", err
	}
	cfg.Debug = cfg.Debug || o.debug
	return cfg, path, nil
}

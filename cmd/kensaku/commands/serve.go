package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/server"
	"github.com/hyperjump/kensaku/internal/watcher"
	"github.com/hyperjump/kensaku/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd constructs `kensaku serve`, which starts the HTTP server and the
// optional directory watcher.
func newServeCmd(opts *rootOptions) *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the kensaku HTTP server.

The store is in memory and starts empty. When watch.directories is set, files
already present are ingested at startup and new or changed files are ingested
as they appear.

Examples:
  kensaku serve
  kensaku serve --port 9000 --debug
  KENSAKU_EMBEDDING_PROVIDER=mock kensaku serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, resolvedPath, err := opts.resolveConfig()
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("serve: failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			logger.Info("config loaded",
				zap.String("config_path", resolvedPath),
				zap.Bool("debug", cfg.Debug),
				zap.Int("dimensions", cfg.Index.Dimensions))

			eng, err := buildEngine(cfg, logger)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer eng.Close()

			if len(cfg.Watch.Directories) > 0 {
				files := watcher.NewFileIngester(eng.pipeline, cfg.Watch.Tenant, int64(cfg.Server.MaxUploadMB)<<20, logger)
				w := watcher.New(cfg.Watch.Directories, cfg.Watch.Extensions, cfg.Watch.RecursiveOrDefault(), files.Handle,
					watcher.WithLogger(logger))
				watchCtx, cancelWatch := context.WithCancel(ctx)
				if err := w.Start(watchCtx); err != nil {
					cancelWatch()
					return fmt.Errorf("serve: failed to start watcher: %w", err)
				}
				// Runs before eng.Close so no ingest touches a closed index.
				defer func() {
					cancelWatch()
					w.Stop()
					w.Wait()
				}()
				go w.Sync(watchCtx)
			}

			srv := server.New(eng.planner, eng.store, &cfg.Server, logger,
				server.WithGateway(eng.gateway),
				server.WithPipeline(eng.pipeline))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("shutdown incomplete", zap.Error(err))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host address to bind to (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "TCP port to listen on (overrides server.port)")
	return cmd
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/embedding"
	"github.com/hyperjump/kensaku/internal/extract"
	"github.com/hyperjump/kensaku/internal/ingest"
	"github.com/hyperjump/kensaku/internal/search"
	"github.com/hyperjump/kensaku/internal/store"
)

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists, and a missing default file falls back to
// built-in defaults plus KENSAKU_* overrides. An explicit path must exist.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == DefaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg, err := config.LoadOrDefault("")
			return cfg, "", err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// engine holds the components behind the HTTP server.
type engine struct {
	store    *store.Store
	gateway  embedding.Gateway
	pipeline *ingest.Pipeline
	planner  *search.Planner
}

// Close releases the gateway and the store.
func (e *engine) Close() {
	if e.gateway != nil {
		_ = e.gateway.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
}

// buildEngine wires store, gateway, extractor, pipeline, and planner from cfg.
func buildEngine(cfg *config.Config, logger *zap.Logger) (*engine, error) {
	st, err := store.New(cfg.Index.Type, cfg.Index.Dimensions, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	e := &engine{store: st}

	gw, err := embedding.New(&cfg.Embedding, cfg.Index.Dimensions, logger)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to initialize embedding gateway: %w", err)
	}
	e.gateway = gw

	extOpts := []extract.Option{extract.WithLogger(logger)}
	if cfg.Extract.TranscriptionAPIKey != "" {
		extOpts = append(extOpts, extract.WithTranscriber(extract.NewHTTPTranscriber(
			cfg.Extract.TranscriptionEndpoint,
			cfg.Extract.TranscriptionModel,
			cfg.Extract.TranscriptionAPIKey,
			time.Duration(cfg.Server.RequestTimeoutSeconds)*time.Second,
		)))
	} else {
		logger.Info("audio transcription disabled", zap.String("reason", "no transcription API key"))
	}

	e.pipeline, err = ingest.NewPipeline(extract.NewExtractor(extOpts...), gw, st, &cfg.Ingest, ingest.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("failed to initialize ingest pipeline: %w", err)
	}
	e.planner = search.NewPlanner(st, &cfg.Search, search.WithGateway(gw), search.WithLogger(logger))
	return e, nil
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// collectFiles expands directories into the files below them whose extension is in
// extensions. Files named explicitly are always kept.
func collectFiles(paths, extensions []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path, extensions) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func hasExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

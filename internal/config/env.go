package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "KENSAKU_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type envBinding struct {
	key   string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"DEBUG", boolField(func(c *Config) *bool { return &c.Debug })},
	{"HOST", stringField(func(c *Config) *string { return &c.Server.Host })},
	{"PORT", intField(func(c *Config) *int { return &c.Server.Port })},
	{"RATE_LIMIT", floatField(func(c *Config) *float64 { return &c.Server.RateLimit })},
	{"INDEX_TYPE", stringField(func(c *Config) *string { return &c.Index.Type })},
	{"DIMENSIONS", intField(func(c *Config) *int { return &c.Index.Dimensions })},
	{"OVERFETCH_FACTOR", intField(func(c *Config) *int { return &c.Search.OverfetchFactor })},
	{"EMBEDDING_PROVIDER", stringField(func(c *Config) *string { return &c.Embedding.Provider })},
	{"EMBEDDING_ENDPOINT", stringField(func(c *Config) *string { return &c.Embedding.Endpoint })},
	{"EMBEDDING_MODEL_PATH", stringField(func(c *Config) *string { return &c.Embedding.ModelPath })},
	{"CHUNK_SIZE", intField(func(c *Config) *int { return &c.Ingest.ChunkSize })},
	{"CHUNK_OVERLAP", intField(func(c *Config) *int { return &c.Ingest.ChunkOverlap })},
	{"TRANSCRIPTION_API_KEY", stringField(func(c *Config) *string { return &c.Extract.TranscriptionAPIKey })},
	{"WATCH_TENANT", stringField(func(c *Config) *string { return &c.Watch.Tenant })},
	{"WATCH_DIRS", func(c *Config, v string) error {
		c.Watch.Directories = splitList(v)
		return nil
	}},
}

// ApplyEnv overlays KENSAKU_* variables onto cfg. Environment values always win over the file.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.key)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(cfg, v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, b.key, err)
		}
	}
	return nil
}

func stringField(f func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*f(c) = v
		return nil
	}
}

func intField(f func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func floatField(f func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*f(c) = n
		return nil
	}
}

func boolField(f func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*f(c) = b
		return nil
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Package config provides configuration loading and structs for the kensaku server.
//
// Values are layered: defaults, then the YAML file, then KENSAKU_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Extract   ExtractConfig   `yaml:"extract"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RequestTimeoutSeconds bounds every request; the store itself never times out.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	// RateLimit is the sustained requests per second allowed per client IP. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	// MaxUploadMB caps multipart uploads on /extract and /ingest.
	MaxUploadMB int `yaml:"max_upload_mb"`
}

// IndexConfig holds vector index settings. Dimensions is fixed for the process lifetime.
type IndexConfig struct {
	Type       string `yaml:"type"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig holds query planner settings.
type SearchConfig struct {
	// OverfetchFactor multiplies top_k before tenant filtering.
	OverfetchFactor   int     `yaml:"overfetch_factor"`
	VectorWeight      float64 `yaml:"vector_weight"`
	LexicalWeight     float64 `yaml:"lexical_weight"`
	KeywordTitleBoost float64 `yaml:"keyword_title_boost"`
	KeywordFuzzy      bool    `yaml:"keyword_fuzzy"`
	KeywordFuzziness  int     `yaml:"keyword_fuzziness"`
}

// EmbeddingConfig holds embedding gateway settings.
type EmbeddingConfig struct {
	// Provider selects the gateway: http, onnx, mock.
	Provider string `yaml:"provider"`
	// Endpoint is the base URL of the HTTP embedding service.
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Normalize      *bool  `yaml:"normalize"`
	// ModelPath points at the ONNX model; the tokenizer vocab is expected next to it.
	ModelPath string `yaml:"model_path"`
	MaxTokens int    `yaml:"max_tokens"`
	// CacheSize is the LRU capacity in texts. Zero disables caching.
	CacheSize int `yaml:"cache_size"`
}

// NormalizeOrDefault returns whether embeddings are L2-normalized; defaults to true when unset.
func (e *EmbeddingConfig) NormalizeOrDefault() bool {
	if e.Normalize != nil {
		return *e.Normalize
	}
	return true
}

// IngestConfig holds passage chunking and embedding batch settings.
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	// EmbedBatchSize is capped at the gateway's batch limit.
	EmbedBatchSize   int `yaml:"embed_batch_size"`
	EmbedConcurrency int `yaml:"embed_concurrency"`
}

// ExtractConfig holds settings for formats that need an external service.
type ExtractConfig struct {
	// TranscriptionEndpoint is an OpenAI-compatible /audio/transcriptions URL.
	TranscriptionEndpoint string `yaml:"transcription_endpoint"`
	TranscriptionModel    string `yaml:"transcription_model"`
	// TranscriptionAPIKey is the bearer token. Prefer env var KENSAKU_TRANSCRIPTION_API_KEY.
	TranscriptionAPIKey string `yaml:"transcription_api_key"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	// Tenant tags every passage ingested by the watcher. Empty ingests untagged passages.
	Tenant string `yaml:"tenant"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies defaults and
// environment overrides. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and otherwise returns defaults with
// environment overrides applied.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	var cfg Config
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Index.Dimensions <= 0 {
		return fmt.Errorf("index.dimensions must be positive, got %d", c.Index.Dimensions)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be in [0, %d), got %d", c.Ingest.ChunkSize, c.Ingest.ChunkOverlap)
	}
	if c.Search.VectorWeight < 0 || c.Search.LexicalWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Address()
}

// Address returns host:port.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

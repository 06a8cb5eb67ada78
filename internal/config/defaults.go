package config

// Defaults used when a field is left at its zero value.
const (
	DefaultHost                  = "localhost"
	DefaultPort                  = 8000
	DefaultRequestTimeoutSeconds = 60
	DefaultRateBurst             = 20
	DefaultMaxUploadMB           = 50
	DefaultIndexType             = "memory"
	DefaultDimensions            = 384
	DefaultOverfetchFactor       = 10
	DefaultVectorWeight          = 0.7
	DefaultLexicalWeight         = 0.3
	DefaultKeywordTitleBoost     = 3.0
	DefaultKeywordFuzziness      = 1
	DefaultEmbeddingProvider     = "http"
	DefaultEmbeddingEndpoint     = "http://localhost:8001"
	DefaultEmbeddingModel        = "all-MiniLM-L6-v2"
	DefaultEmbeddingTimeout      = 30
	DefaultMaxTokens             = 256
	DefaultCacheSize             = 10000
	DefaultChunkSize             = 512
	DefaultChunkOverlap          = 50
	DefaultEmbedBatchSize        = 100
	DefaultEmbedConcurrency      = 4
	DefaultTranscriptionEndpoint = "https://api.groq.com/openai/v1/audio/transcriptions"
	DefaultTranscriptionModel    = "whisper-large-v3"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = DefaultRateBurst
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = DefaultMaxUploadMB
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = DefaultIndexType
	}
	if cfg.Index.Dimensions == 0 {
		cfg.Index.Dimensions = DefaultDimensions
	}
	if cfg.Search.OverfetchFactor <= 0 {
		cfg.Search.OverfetchFactor = DefaultOverfetchFactor
	}
	// Both weights unset means the stock 0.7/0.3 blend; a single explicit zero is kept.
	if cfg.Search.VectorWeight == 0 && cfg.Search.LexicalWeight == 0 {
		cfg.Search.VectorWeight = DefaultVectorWeight
		cfg.Search.LexicalWeight = DefaultLexicalWeight
	}
	if cfg.Search.KeywordTitleBoost == 0 {
		cfg.Search.KeywordTitleBoost = DefaultKeywordTitleBoost
	}
	if cfg.Search.KeywordFuzziness == 0 {
		cfg.Search.KeywordFuzziness = DefaultKeywordFuzziness
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = DefaultEmbeddingProvider
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = DefaultEmbeddingEndpoint
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = DefaultEmbeddingTimeout
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = DefaultMaxTokens
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = DefaultCacheSize
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Ingest.EmbedBatchSize <= 0 || cfg.Ingest.EmbedBatchSize > DefaultEmbedBatchSize {
		cfg.Ingest.EmbedBatchSize = DefaultEmbedBatchSize
	}
	if cfg.Ingest.EmbedConcurrency <= 0 {
		cfg.Ingest.EmbedConcurrency = DefaultEmbedConcurrency
	}
	if cfg.Extract.TranscriptionEndpoint == "" {
		cfg.Extract.TranscriptionEndpoint = DefaultTranscriptionEndpoint
	}
	if cfg.Extract.TranscriptionModel == "" {
		cfg.Extract.TranscriptionModel = DefaultTranscriptionModel
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".pptx", ".csv"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}

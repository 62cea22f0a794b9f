// Package config provides configuration loading and validation for the CLI and services.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the service configuration that can be loaded from a JSON file.
// All fields are optional; environment variables override file values and defaults fill the rest.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Matching
	VocabularyPath string  `json:"vocabulary_path,omitempty"` // YAML/JSON skill vocabulary (embedded default when empty)
	SemanticMethod string  `json:"semantic_method,omitempty"` // tfidf or embedding
	EmbeddingModel string  `json:"embedding_model,omitempty"` // Gemini embedding model
	EmbeddingFloor float64 `json:"embedding_floor,omitempty"` // Cosine mapped to a zero score
	GeminiAPIKey   string  `json:"gemini_api_key,omitempty"`  // Required for the embedding method
	MaxInputBytes  int     `json:"max_input_bytes,omitempty"` // Per-text size cap

	// Storage
	DatabaseURL string   `json:"database_url,omitempty"` // PostgreSQL connection URL (history)
	RedisURL    string   `json:"redis_url,omitempty"`    // Embedding cache (in-memory when empty)
	CacheTTL    Duration `json:"cache_ttl,omitempty"`    // Embedding cache TTL ("24h")

	// Worker
	AMQPURL        string `json:"amqp_url,omitempty"`
	RequestQueue   string `json:"request_queue,omitempty"`
	ResultQueue    string `json:"result_queue,omitempty"`
	MinIOEndpoint  string `json:"minio_endpoint,omitempty"`
	MinIOAccessKey string `json:"minio_access_key,omitempty"`
	MinIOSecretKey string `json:"minio_secret_key,omitempty"`
	MinIOBucket    string `json:"minio_bucket,omitempty"`
	MinIOUseSSL    bool   `json:"minio_use_ssl,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json or pretty
}

// Semantic methods.
const (
	MethodTFIDF     = "tfidf"
	MethodEmbedding = "embedding"
)

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:           8080,
		SemanticMethod: MethodTFIDF,
		EmbeddingModel: "text-embedding-004",
		EmbeddingFloor: 0.4,
		MaxInputBytes:  1 << 20,
		CacheTTL:       Duration(24 * time.Hour),
		RequestQueue:   "resume.evaluate",
		ResultQueue:    "resume.evaluated",
		MinIOBucket:    "resumes",
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional file at path, applies the environment and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Port = EnvInt("PORT", c.Port)
	c.VocabularyPath = EnvString("VOCABULARY_PATH", c.VocabularyPath)
	c.SemanticMethod = EnvString("SEMANTIC_METHOD", c.SemanticMethod)
	c.EmbeddingModel = EnvString("EMBEDDING_MODEL", c.EmbeddingModel)
	c.EmbeddingFloor = EnvFloat("EMBEDDING_FLOOR", c.EmbeddingFloor)
	c.GeminiAPIKey = EnvString("GEMINI_API_KEY", c.GeminiAPIKey)
	c.MaxInputBytes = EnvInt("MAX_INPUT_BYTES", c.MaxInputBytes)
	c.DatabaseURL = EnvString("DATABASE_URL", c.DatabaseURL)
	c.RedisURL = EnvString("REDIS_URL", c.RedisURL)
	c.CacheTTL = Duration(EnvDuration("CACHE_TTL", time.Duration(c.CacheTTL)))
	c.AMQPURL = EnvString("AMQP_URL", c.AMQPURL)
	c.RequestQueue = EnvString("REQUEST_QUEUE", c.RequestQueue)
	c.ResultQueue = EnvString("RESULT_QUEUE", c.ResultQueue)
	c.MinIOEndpoint = EnvString("MINIO_ENDPOINT", c.MinIOEndpoint)
	c.MinIOAccessKey = EnvString("MINIO_ACCESS_KEY", c.MinIOAccessKey)
	c.MinIOSecretKey = EnvString("MINIO_SECRET_KEY", c.MinIOSecretKey)
	c.MinIOBucket = EnvString("MINIO_BUCKET", c.MinIOBucket)
	c.MinIOUseSSL = EnvBool("MINIO_USE_SSL", c.MinIOUseSSL)
	c.LogLevel = EnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = EnvString("LOG_FORMAT", c.LogFormat)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.SemanticMethod {
	case "", MethodTFIDF:
	case MethodEmbedding:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("config error: 'gemini_api_key' is required for semantic_method %q", MethodEmbedding)
		}
	default:
		return fmt.Errorf("config error: unknown 'semantic_method' %q", c.SemanticMethod)
	}

	if c.EmbeddingFloor < 0 || c.EmbeddingFloor >= 1 {
		return fmt.Errorf("config error: 'embedding_floor' must be in [0, 1)")
	}
	if c.MaxInputBytes < 0 {
		return fmt.Errorf("config error: 'max_input_bytes' must be non-negative")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}

	if c.VocabularyPath != "" {
		if _, err := os.Stat(c.VocabularyPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.VocabularyPath)
		}
	}

	if c.MinIOEndpoint != "" && (c.MinIOAccessKey == "" || c.MinIOSecretKey == "") {
		return fmt.Errorf("config error: 'minio_access_key' and 'minio_secret_key' are required with 'minio_endpoint'")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.VocabularyPath == "" {
		result.VocabularyPath = defaults.VocabularyPath
	}
	if result.SemanticMethod == "" {
		result.SemanticMethod = defaults.SemanticMethod
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.AMQPURL == "" {
		result.AMQPURL = defaults.AMQPURL
	}
	if result.RequestQueue == "" {
		result.RequestQueue = defaults.RequestQueue
	}
	if result.ResultQueue == "" {
		result.ResultQueue = defaults.ResultQueue
	}
	if result.MinIOEndpoint == "" {
		result.MinIOEndpoint = defaults.MinIOEndpoint
	}
	if result.MinIOAccessKey == "" {
		result.MinIOAccessKey = defaults.MinIOAccessKey
	}
	if result.MinIOSecretKey == "" {
		result.MinIOSecretKey = defaults.MinIOSecretKey
	}
	if result.MinIOBucket == "" {
		result.MinIOBucket = defaults.MinIOBucket
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.EmbeddingFloor == 0 {
		result.EmbeddingFloor = defaults.EmbeddingFloor
	}
	if result.MaxInputBytes == 0 {
		result.MaxInputBytes = defaults.MaxInputBytes
	}
	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge

	return result
}

// Duration is a time.Duration that reads "90s"-style strings or nanosecond numbers from JSON.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*d = Duration(time.Duration(v))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

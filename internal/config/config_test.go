package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"semantic_method": "embedding",
		"gemini_api_key": "k",
		"embedding_floor": 0.3,
		"cache_ttl": "90m",
		"minio_use_ssl": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, MethodEmbedding, cfg.SemanticMethod)
	assert.Equal(t, 0.3, cfg.EmbeddingFloor)
	assert.Equal(t, Duration(90*time.Minute), cfg.CacheTTL)
	assert.True(t, cfg.MinIOUseSSL)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_BadDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"cache_ttl": "soon"}`), 0644))

	_, err := LoadConfig(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"port": 9090, "log_level": "debug"}`), 0644))

	t.Setenv("PORT", "7070")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SEMANTIC_METHOD", "")

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, Duration(5*time.Minute), cfg.CacheTTL)
	assert.True(t, cfg.MinIOUseSSL)
	// defaults fill the rest
	assert.Equal(t, MethodTFIDF, cfg.SemanticMethod)
	assert.Equal(t, "resume.evaluate", cfg.RequestQueue)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("SEMANTIC_METHOD", "")
	t.Setenv("PORT", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults().Port, cfg.Port)
	assert.Equal(t, Defaults().MaxInputBytes, cfg.MaxInputBytes)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: Defaults()},
		{name: "bad port", cfg: Config{Port: 70000}, wantErr: "port"},
		{name: "unknown method", cfg: Config{SemanticMethod: "bm25"}, wantErr: "semantic_method"},
		{name: "embedding without key", cfg: Config{SemanticMethod: MethodEmbedding}, wantErr: "gemini_api_key"},
		{name: "embedding with key", cfg: Config{SemanticMethod: MethodEmbedding, GeminiAPIKey: "k"}},
		{name: "floor out of range", cfg: Config{EmbeddingFloor: 1}, wantErr: "embedding_floor"},
		{name: "negative input cap", cfg: Config{MaxInputBytes: -1}, wantErr: "max_input_bytes"},
		{name: "missing vocabulary file", cfg: Config{VocabularyPath: "/nonexistent/skills.yaml"}, wantErr: "vocabulary file not found"},
		{name: "minio without credentials", cfg: Config{MinIOEndpoint: "localhost:9000"}, wantErr: "minio_access_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := Defaults()

	partial := Config{
		Port:          9000,
		ResultQueue:   "custom.results",
		DatabaseURL:   "postgres://localhost/db",
		MaxInputBytes: 10,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "custom.results", merged.ResultQueue)
	assert.Equal(t, "postgres://localhost/db", merged.DatabaseURL)
	assert.Equal(t, 10, merged.MaxInputBytes)

	// Default values should fill in empty fields
	assert.Equal(t, defaults.RequestQueue, merged.RequestQueue)
	assert.Equal(t, defaults.SemanticMethod, merged.SemanticMethod)
	assert.Equal(t, defaults.CacheTTL, merged.CacheTTL)
	assert.Equal(t, defaults.EmbeddingFloor, merged.EmbeddingFloor)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Port: 1234}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 1234, merged.Port)
	assert.Equal(t, "", merged.SemanticMethod)
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))
}

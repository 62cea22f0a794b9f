package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/fetch"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/semantic"
	"github.com/jonathan/resume-matcher/internal/storage"
	"github.com/jonathan/resume-matcher/internal/vocabulary"
)

// memoryCacheEntries bounds the in-process cache used when no Redis URL is configured.
const memoryCacheEntries = 4096

// closers collects cleanup functions and runs them in reverse order.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) close() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// openCache returns Redis when configured, otherwise an in-process cache.
func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(memoryCacheEntries), nil
	}
	store, err := cache.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	logging.Debug().Msg("using redis cache")
	return store, nil
}

// buildEngine loads the vocabulary and the configured semantic scorer.
func buildEngine(ctx context.Context, cfg *config.Config, store cache.Store, cleanup *closers) (*pipeline.Engine, error) {
	vocab, err := vocabulary.LoadOrDefault(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}

	var scorer semantic.Scorer
	switch cfg.SemanticMethod {
	case config.MethodEmbedding:
		embedder, err := llm.NewEmbedder(ctx, llm.DefaultConfig().WithModel(cfg.EmbeddingModel), cfg.GeminiAPIKey)
		if err != nil {
			return nil, &vocabulary.ConfigurationError{Message: "embedding provider unavailable", Cause: err}
		}
		cached := llm.NewCachedEmbedder(embedder, store, time.Duration(cfg.CacheTTL))
		cleanup.add(func() { _ = cached.Close() })
		scorer = semantic.NewEmbeddingScorer(cached, cfg.EmbeddingFloor)
	default:
		scorer, err = semantic.New(cfg.SemanticMethod)
		if err != nil {
			return nil, err
		}
	}

	logging.Debug().
		Str("vocabulary_version", vocab.Version()).
		Int("skills", vocab.Len()).
		Str("semantic_method", scorer.Method()).
		Msg("engine ready")

	return pipeline.New(vocab, scorer, pipeline.WithMaxInputBytes(cfg.MaxInputBytes))
}

// openHistory connects to PostgreSQL when a URL is configured. A nil DB means history is off.
func openHistory(ctx context.Context, cfg *config.Config, required bool) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		if required {
			return nil, fmt.Errorf("DATABASE_URL is required for history")
		}
		return nil, nil
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// openObjectStore connects to MinIO when an endpoint is configured.
func openObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	if cfg.MinIOEndpoint == "" {
		return nil, nil
	}
	return storage.NewMinIO(ctx, storage.MinIOConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
	})
}

// readJobDescription returns the job description from a file, or from a URL when path is empty.
func readJobDescription(ctx context.Context, path, url string, store cache.Store) (string, error) {
	switch {
	case path != "" && url != "":
		return "", fmt.Errorf("use either --jd or --jd-url, not both")
	case path != "":
		return ingestion.ReadFile(path)
	case url != "":
		return fetch.NewCachedFetcher(store, nil, fetch.DefaultPageCacheTTL).JobDescription(ctx, url)
	default:
		return "", fmt.Errorf("a job description is required (--jd or --jd-url)")
	}
}

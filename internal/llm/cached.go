package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/logging"
)

// CachedEmbedder memoizes another Embedder in a cache.Store keyed by model and text.
// Cache failures are logged and fall through to the wrapped embedder.
type CachedEmbedder struct {
	inner Embedder
	store cache.Store
	ttl   time.Duration
}

// NewCachedEmbedder wraps inner. A nil store disables caching.
func NewCachedEmbedder(inner Embedder, store cache.Store, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, store: store, ttl: ttl}
}

// Embed returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.store == nil {
		return c.inner.Embed(ctx, text)
	}

	key := cache.Key("emb", c.inner.Model(), text)
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		logging.Warn().Err(err).Str("key", key).Msg("embedding cache read failed")
	} else if ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
		logging.Warn().Str("key", key).Msg("discarding corrupt cached embedding")
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("embedding cache write failed")
		}
	}
	return vec, nil
}

// Model returns the wrapped model name.
func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// Close closes the wrapped embedder. The store is owned by the caller.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}

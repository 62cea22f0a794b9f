package fetch

import (
	"context"
	"time"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/logging"
)

// DefaultPageCacheTTL is how long an extracted job description is reused.
const DefaultPageCacheTTL = 24 * time.Hour

// CachedFetcher wraps JobDescription with a cache.Store keyed by URL.
type CachedFetcher struct {
	store   cache.Store
	options *Options
	ttl     time.Duration
}

// NewCachedFetcher creates a cached fetcher. A nil store disables caching.
func NewCachedFetcher(store cache.Store, opts *Options, ttl time.Duration) *CachedFetcher {
	if opts == nil {
		opts = DefaultOptions()
	}
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	return &CachedFetcher{store: store, options: opts, ttl: ttl}
}

// JobDescription returns the cached description for urlStr, fetching it on a miss.
// Failed fetches are not cached.
func (f *CachedFetcher) JobDescription(ctx context.Context, urlStr string) (string, error) {
	if f.store == nil {
		return JobDescription(ctx, urlStr, f.options)
	}

	key := cache.Key("jd", urlStr)
	if data, ok, err := f.store.Get(ctx, key); err != nil {
		logging.Warn().Err(err).Str("url", urlStr).Msg("page cache read failed")
	} else if ok && len(data) > 0 {
		logging.Debug().Str("url", urlStr).Msg("page cache hit")
		return string(data), nil
	}

	text, err := JobDescription(ctx, urlStr, f.options)
	if err != nil {
		return "", err
	}

	if err := f.store.Set(ctx, key, []byte(text), f.ttl); err != nil {
		logging.Warn().Err(err).Str("url", urlStr).Msg("page cache write failed")
	}
	return text, nil
}

package news

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Ziolli/Case-Indicium/internal/observability"
)

// CachedSearcher wraps a Searcher with a redis cache keyed on query
// and window. Cache failures never fail the search.
type CachedSearcher struct {
	inner  Searcher
	cache  *redis.Client
	ttl    time.Duration
	logger *observability.Logger
}

// NewCachedSearcher wraps inner with caching. A nil cache disables it.
func NewCachedSearcher(inner Searcher, cache *redis.Client, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: observability.NewLogger("news"),
	}
}

func cacheKey(query string, daysBack int) string {
	return fmt.Sprintf("news:%s:%d", query, daysBack)
}

// Search serves from cache when possible.
func (s *CachedSearcher) Search(ctx context.Context, query string, daysBack int) ([]Article, error) {
	metrics := observability.GetGlobalMetrics()

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey(query, daysBack)).Result(); err == nil {
			var articles []Article
			if err := json.Unmarshal([]byte(raw), &articles); err == nil {
				metrics.Inc(observability.MetricCacheHits, map[string]string{"cache": "news"})
				return articles, nil
			}
		}
		metrics.Inc(observability.MetricCacheMisses, map[string]string{"cache": "news"})
	}

	articles, err := s.inner.Search(ctx, query, daysBack)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(articles); err == nil {
			if err := s.cache.Set(ctx, cacheKey(query, daysBack), data, s.ttl).Err(); err != nil {
				s.logger.Warn(ctx, "failed to cache news results", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
	return articles, nil
}

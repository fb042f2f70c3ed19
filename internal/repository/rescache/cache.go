package rescache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shakesearch/internal/db"
	"github.com/kailas-cloud/shakesearch/internal/domain"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/request"
	"github.com/kailas-cloud/shakesearch/internal/domain/search/result"
)

var cacheKeyPrefix = domain.KeyPrefix + "results:"

// Searcher is the search service being cached.
type Searcher interface {
	Search(ctx context.Context, req request.Request) (result.Set, error)
}

// store is the consumer interface for the result cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher caches result sets in a key-value store.
type CachedSearcher struct {
	inner      Searcher
	store      store
	ttl        time.Duration
	scope      string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// WithScope mixes scope into every cache key, so entries written under a
// different matcher setup are never served.
func (c *CachedSearcher) WithScope(scope string) *CachedSearcher {
	c.scope = scope
	return c
}

// Search returns a cached result set or calls the inner searcher.
// Errors are never cached and cache failures never fail a search.
func (c *CachedSearcher) Search(ctx context.Context, req request.Request) (result.Set, error) {
	key := c.cacheKey(req.Query())

	if lines, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return lines, nil
	}

	c.incCache("miss")

	res, err := c.inner.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search lines: %w", err)
	}

	c.putToCache(ctx, key, res)
	return res, nil
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedSearcher) cacheKey(query string) string {
	h := sha256.New()
	h.Write([]byte(c.scope))
	h.Write([]byte{0})
	h.Write([]byte(query))
	return cacheKeyPrefix + hex.EncodeToString(h.Sum(nil))
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) (result.Set, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var lines result.Set
	if err := json.Unmarshal(data, &lines); err != nil {
		c.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return lines.OrEmpty(), true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, lines result.Set) {
	data, err := json.Marshal(lines.OrEmpty())
	if err != nil {
		c.logger.Warn("Failed to encode results", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}

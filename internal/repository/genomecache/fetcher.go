// Package genomecache caches remotely fetched genomes in a key-value store.
package genomecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hammersynth/internal/db"
	"github.com/kailas-cloud/hammersynth/internal/domain/genome"
	"github.com/kailas-cloud/hammersynth/internal/repository/gto"
)

// KeyPrefix namespaces cache entries.
const KeyPrefix = "hammersynth:genome:"

// store is the consumer interface for the genome cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedFetcher serves genomes from the store and falls back to the inner fetcher.
type CachedFetcher struct {
	inner      genome.Fetcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), nil disables counting.
func New(
	inner genome.Fetcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedFetcher {
	return &CachedFetcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Fetch returns a cached genome or downloads and caches it.
// Cache failures never fail the fetch.
func (c *CachedFetcher) Fetch(ctx context.Context, id string, detail genome.Detail) (*genome.Genome, error) {
	key := CacheKey(id, detail)

	if g, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return g, nil
	}

	c.incCache("miss")

	g, err := c.inner.Fetch(ctx, id, detail)
	if err != nil {
		return nil, fmt.Errorf("fetch genome %s: %w", id, err)
	}

	c.putToCache(ctx, key, g)
	return g, nil
}

// CacheKey returns the store key for a genome at a detail level.
func CacheKey(id string, detail genome.Detail) string {
	return KeyPrefix + string(detail) + ":" + id
}

func (c *CachedFetcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedFetcher) getFromCache(ctx context.Context, key string) (*genome.Genome, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached genome", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	g, err := gto.Unmarshal(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached genome", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return g, true
}

func (c *CachedFetcher) putToCache(ctx context.Context, key string, g *genome.Genome) {
	data, err := gto.Marshal(g)
	if err != nil {
		c.logger.Warn("Failed to encode genome for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache genome", zap.String("key", key), zap.Error(err))
	}
}

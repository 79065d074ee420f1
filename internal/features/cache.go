package features

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonathan/talent-match/internal/types"
	"golang.org/x/sync/singleflight"
)

// Cache stores feature sets keyed by types.CacheKey (kind, id and version).
// Because extraction is pure, concurrent Sets of the same key store identical
// values and may race freely.
type Cache interface {
	Get(ctx context.Context, key string) (*types.FeatureSet, bool, error)
	Set(ctx context.Context, key string, fs *types.FeatureSet) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	entries sync.Map // key -> *types.FeatureSet
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

// Get returns the cached feature set for key.
func (m *MemoryCache) Get(_ context.Context, key string) (*types.FeatureSet, bool, error) {
	v, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	return v.(*types.FeatureSet), true, nil
}

// Set stores fs under key.
func (m *MemoryCache) Set(_ context.Context, key string, fs *types.FeatureSet) error {
	m.entries.Store(key, fs)
	return nil
}

// TieredCache reads L1 then L2 and populates L1 on an L2 hit. Writes go to both.
type TieredCache struct {
	L1 Cache
	L2 Cache
}

// Get tries L1, then L2.
func (t *TieredCache) Get(ctx context.Context, key string) (*types.FeatureSet, bool, error) {
	if fs, ok, err := t.L1.Get(ctx, key); err == nil && ok {
		return fs, true, nil
	}
	fs, ok, err := t.L2.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = t.L1.Set(ctx, key, fs)
	return fs, true, nil
}

// Set stores fs in both tiers.
func (t *TieredCache) Set(ctx context.Context, key string, fs *types.FeatureSet) error {
	if err := t.L1.Set(ctx, key, fs); err != nil {
		return err
	}
	return t.L2.Set(ctx, key, fs)
}

// Source produces feature sets for records. Extractor and CachingExtractor implement it.
type Source interface {
	Extract(ctx context.Context, record types.Record) (*types.FeatureSet, error)
	ExtractLexical(ctx context.Context, record types.Record) (*types.FeatureSet, error)
	Dimension() int
}

// CacheStats counts cache lookups.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// CachingExtractor wraps an Extractor with a Cache. Concurrent requests for the
// same key are collapsed into one extraction, which is not cancelled when one of
// its callers is. Embedders bound each call with their own timeout.
type CachingExtractor struct {
	extractor *Extractor
	cache     Cache
	group     singleflight.Group
	hits      atomic.Int64
	misses    atomic.Int64
	// OnCacheError, if set, receives cache read/write failures. They never fail extraction.
	OnCacheError func(key string, err error)
}

// NewCachingExtractor creates a CachingExtractor. A nil cache selects a MemoryCache.
func NewCachingExtractor(extractor *Extractor, cache Cache) *CachingExtractor {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CachingExtractor{extractor: extractor, cache: cache}
}

// Dimension returns the embedding dimension of the wrapped extractor.
func (c *CachingExtractor) Dimension() int {
	return c.extractor.Dimension()
}

// Extractor returns the wrapped extractor.
func (c *CachingExtractor) Extractor() *Extractor {
	return c.extractor
}

// Stats returns hit and miss counters.
func (c *CachingExtractor) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Extract returns the cached feature set for the record version, computing it once on a miss.
func (c *CachingExtractor) Extract(ctx context.Context, record types.Record) (*types.FeatureSet, error) {
	key := types.CacheKey(record.Kind(), record.RecordID(), record.RecordVersion())

	fs, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.reportCacheError(key, err)
	}
	if ok && fs.Embedding != nil && len(fs.Embedding) == c.extractor.Dimension() {
		c.hits.Add(1)
		return fs, nil
	}
	c.misses.Add(1)

	// The shared extraction outlives any single caller; each caller still
	// stops waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		fs, err := c.extractor.Extract(shared, record)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(shared, key, fs); err != nil {
			c.reportCacheError(key, err)
		}
		return fs, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.FeatureSet), nil
	}
}

// ExtractLexical bypasses the cache; lexical features carry no embedding and
// are cheap to recompute.
func (c *CachingExtractor) ExtractLexical(ctx context.Context, record types.Record) (*types.FeatureSet, error) {
	return c.extractor.ExtractLexical(ctx, record)
}

func (c *CachingExtractor) reportCacheError(key string, err error) {
	if c.OnCacheError != nil && !errors.Is(err, context.Canceled) {
		c.OnCacheError(key, fmt.Errorf("feature cache %s: %w", key, err))
	}
}

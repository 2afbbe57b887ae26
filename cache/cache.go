// Package cache provides a bounded, TTL-based cache for answers and
// per-query retrieval hits. The cache is injectable and owned by the
// engine's caller; the pipeline itself keeps no global state.
package cache

import (
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/askfuse/askfuse/model"
)

const (
	answerPrefix = "answer:"
	hitsPrefix   = "hits:"
)

// QueryCache caches answer results and retrieval hits with a TTL and a
// bounded entry count
type QueryCache struct {
	store      *gocache.Cache
	maxEntries int
}

// New creates a QueryCache. Entries expire after ttl; when the cache
// exceeds maxEntries it is cleared, trading hit rate for a hard memory
// bound.
func New(ttl time.Duration, maxEntries int) *QueryCache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &QueryCache{
		store:      gocache.New(ttl, ttl),
		maxEntries: maxEntries,
	}
}

// AnswerKey builds the cache key for a full answer
func AnswerKey(question string, route model.Route, mode model.Mode) string {
	return fmt.Sprintf("%s|%s|%s", question, route, mode)
}

// GetAnswer returns a cached answer result. Every hit gets its own
// shallow copy so one caller mutating its result cannot change what
// later callers see.
func (c *QueryCache) GetAnswer(key string) (*model.AnswerResult, bool) {
	v, ok := c.store.Get(answerPrefix + key)
	if !ok {
		return nil, false
	}
	result, ok := v.(*model.AnswerResult)
	if !ok {
		return nil, false
	}
	copied := *result
	return &copied, true
}

// SetAnswer caches an answer result
func (c *QueryCache) SetAnswer(key string, result *model.AnswerResult) {
	c.evictIfFull()
	c.store.SetDefault(answerPrefix+key, result)
}

// GetHits returns cached retrieval hits for a single sub-query
func (c *QueryCache) GetHits(query string) ([]model.Chunk, bool) {
	v, ok := c.store.Get(hitsPrefix + query)
	if !ok {
		return nil, false
	}
	hits, ok := v.([]model.Chunk)
	return hits, ok
}

// SetHits caches retrieval hits for a single sub-query
func (c *QueryCache) SetHits(query string, hits []model.Chunk) {
	c.evictIfFull()
	c.store.SetDefault(hitsPrefix+query, hits)
}

// Len returns the current number of cached entries, including entries
// that have expired but not yet been swept
func (c *QueryCache) Len() int {
	return c.store.ItemCount()
}

func (c *QueryCache) evictIfFull() {
	if c.store.ItemCount() < c.maxEntries {
		return
	}
	c.store.DeleteExpired()
	if c.store.ItemCount() >= c.maxEntries {
		c.store.Flush()
	}
}

package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/snow-ghost/knapsack/core"
)

// FitnessCache memoizes fitness by genome across generations. Fitness is a pure
// function of the genome for a fixed evaluator, so entries never go stale.
type FitnessCache struct {
	next  core.FitnessEvaluator
	cache *lru.Cache[string, float64]

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
	maxSize   int
}

// NewFitnessCache wraps next with an LRU of config.MaxSize genomes.
func NewFitnessCache(next core.FitnessEvaluator, config Config) (*FitnessCache, error) {
	if config.MaxSize <= 0 {
		config = DefaultConfig()
	}
	c := &FitnessCache{next: next, maxSize: config.MaxSize}

	cache, err := lru.NewWithEvict[string, float64](config.MaxSize, func(string, float64) {
		c.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Evaluate returns the cached fitness or computes and stores it. Errors are
// not cached.
func (c *FitnessCache) Evaluate(g core.Genome) (float64, error) {
	key := g.Key()
	if f, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return f, nil
	}
	c.misses.Add(1)

	f, err := c.next.Evaluate(g)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, f)
	return f, nil
}

// Stats returns current cache statistics
func (c *FitnessCache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.cache.Len(),
		MaxSize:   c.maxSize,
	}
}

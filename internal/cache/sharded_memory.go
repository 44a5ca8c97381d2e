package cache

import (
	"context"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"

	"recipe-extraction-api/internal/extractor"
)

const shardCount = 64 // must be a power of 2

// ShardedMemoryCache spreads keys over several go-cache instances to cut
// lock contention.
type ShardedMemoryCache struct {
	shards []*cache.Cache
}

func NewShardedMemoryCache(defaultExpiration, cleanupInterval time.Duration) *ShardedMemoryCache {
	c := &ShardedMemoryCache{
		shards: make([]*cache.Cache, shardCount),
	}
	for i := range c.shards {
		c.shards[i] = cache.New(defaultExpiration, cleanupInterval)
	}
	return c
}

func (c *ShardedMemoryCache) getShard(key string) *cache.Cache {
	return c.shards[xxhash.Sum64String(key)&(shardCount-1)]
}

func (c *ShardedMemoryCache) Get(_ context.Context, url string) (*extractor.Outcome, bool) {
	key := Key(url)
	if val, found := c.getShard(key).Get(key); found {
		if outcome, ok := val.(*extractor.Outcome); ok {
			return outcome, true
		}
	}
	return nil, false
}

func (c *ShardedMemoryCache) Set(_ context.Context, url string, outcome *extractor.Outcome, ttl time.Duration) {
	if !cacheable(outcome) {
		return
	}
	key := Key(url)
	c.getShard(key).Set(key, outcome, ttl)
}

// Len counts live entries across shards.
func (c *ShardedMemoryCache) Len() int {
	n := 0
	for _, s := range c.shards {
		n += s.ItemCount()
	}
	return n
}

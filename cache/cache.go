package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// StatisticsKey caches the aggregate statistics payload.
	StatisticsKey = "statistics"
	// MarkersKey caches the derived GeoJSON payload.
	MarkersKey = "markers"
)

// Cache is the short-TTL memory cache fronting the read API. Both
// entries derive from the same snapshot, so the pipeline flushes the
// whole cache after every successful replace; TTL expiry is the only
// other eviction path.
type Cache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Flush()
}

type memoryCache struct {
	store *gocache.Cache
}

// New - memory cache with the given default TTL
func New(ttl time.Duration) Cache {
	return &memoryCache{
		store: gocache.New(ttl, 2*ttl),
	}
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Set(key string, value interface{}) {
	c.store.SetDefault(key, value)
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}

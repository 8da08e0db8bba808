package cache

import (
	"context"
	"time"
)

// NullCache discards every write and misses every read. It backs --no-cache
// runs and schedulers constructed without a cache: the render pipeline always
// talks to a Cache, so disabling frame and artifact caching means swapping in
// this backend rather than branching at every call site.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get implements Cache; it always reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set implements Cache; the data is dropped.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete implements Cache.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close implements Cache.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)

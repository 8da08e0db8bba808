package cache

import (
	"context"
	"time"
)

// retryCache decorates a backend so transient failures are retried before a
// render pass gives up on its cached frames.
type retryCache struct {
	inner Cache
}

// WithRetry wraps a cache with retry-with-backoff semantics. Only errors the
// backend marks with [Retryable] trigger retries (the redis backend marks
// network-level failures); everything else fails fast. Local backends never
// mark errors retryable, so wrapping them is a no-op.
func WithRetry(c Cache) Cache {
	return &retryCache{inner: c}
}

// Get implements Cache.
func (r *retryCache) Get(ctx context.Context, key string) (data []byte, hit bool, err error) {
	err = RetryWithBackoff(ctx, func() error {
		var e error
		data, hit, e = r.inner.Get(ctx, key)
		return e
	})
	return data, hit, err
}

// Set implements Cache.
func (r *retryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return r.inner.Set(ctx, key, data, ttl)
	})
}

// Delete implements Cache.
func (r *retryCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return r.inner.Delete(ctx, key)
	})
}

// Close implements Cache.
func (r *retryCache) Close() error {
	return r.inner.Close()
}

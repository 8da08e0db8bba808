package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation. The
// API server scopes keys per client when a request carries X-Client-ID, so
// tenants sharing one cache backend never read each other's frames; the CLI
// shares a single global namespace.
//
//	clientKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DatasetKey generates a prefixed key for dataset caching.
func (k *ScopedKeyer) DatasetKey(opts DatasetKeyOpts) string {
	return k.prefix + k.inner.DatasetKey(opts)
}

// FrameKey generates a prefixed key for frame caching.
func (k *ScopedKeyer) FrameKey(stateHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(stateHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(stateHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(stateHash, format)
}

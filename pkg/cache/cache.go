// Package cache provides the caching layer chartpipe uses to skip recomputing
// datasets, rendered frames, and output artifacts for unchanged inputs.
//
// The [Cache] interface has three implementations:
//   - [FileCache]: directory-backed, for CLI usage
//   - [RedisCache]: Redis-backed, for the API server
//   - [NullCache]: no-op, for tests and disabled caching
//
// Keys are produced by a [Keyer] so CLI and API generate identical keys for
// identical inputs.
package cache

import (
	"context"
	"time"
)

// TTLs for the different cached value classes.
const (
	// TTLDataset applies to datasets loaded from external sources.
	TTLDataset = 6 * time.Hour

	// TTLFrame applies to computed frame sequences (pipeline output).
	TTLFrame = 24 * time.Hour

	// TTLArtifact applies to serialized output artifacts (SVG, JSON).
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. hit is false on a miss; err is reserved for
	// backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DatasetKeyOpts distinguishes dataset cache entries.
type DatasetKeyOpts struct {
	Kind string // source kind: "file", "mongo"
	Name string // path or collection
}

// FrameKeyOpts distinguishes frame cache entries beyond the state hash.
type FrameKeyOpts struct {
	Width  float64
	Height float64
}

// Keyer generates cache keys. Implementations must be deterministic: the
// same inputs always produce the same key.
type Keyer interface {
	// DatasetKey generates a key for a loaded dataset.
	DatasetKey(opts DatasetKeyOpts) string

	// FrameKey generates a key for the pipeline's frame output, keyed by the
	// chart-state content hash.
	FrameKey(stateHash string, opts FrameKeyOpts) string

	// ArtifactKey generates a key for a serialized artifact in one format.
	ArtifactKey(stateHash, format string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// DatasetKey implements Keyer.
func (k *DefaultKeyer) DatasetKey(opts DatasetKeyOpts) string {
	return hashKey("dataset", opts.Kind, opts.Name)
}

// FrameKey implements Keyer.
func (k *DefaultKeyer) FrameKey(stateHash string, opts FrameKeyOpts) string {
	return hashKey("frame", stateHash, opts.Width, opts.Height)
}

// ArtifactKey implements Keyer.
func (k *DefaultKeyer) ArtifactKey(stateHash, format string) string {
	return hashKey("artifact", stateHash, format)
}

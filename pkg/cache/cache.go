// Package cache provides byte-level caching for parsed graphs and completed
// run histories.
//
// Three backends implement the same [Cache] interface:
//
//   - [FileCache]: directory of JSON entries for CLI usage
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every component hashing the same
// inputs lands on the same entry: graph entries are keyed by file content
// hash, run entries by the canonical JSON of the run options.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with optional TTLs.
type Cache interface {
	// Get retrieves a value. The second return value is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any backend resources.
	Close() error
}

// Keyer generates cache keys for the object types flipchain caches.
type Keyer interface {
	// GraphKey keys a parsed graph by the content hash of its source file.
	GraphKey(contentHash string) string

	// RunKey keys a completed run history by the hash of its options.
	RunKey(optionsHash string) string
}

// DefaultKeyer produces plain prefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GraphKey generates a key for graph caching.
func (DefaultKeyer) GraphKey(contentHash string) string { return "graph:" + contentHash }

// RunKey generates a key for run-history caching.
func (DefaultKeyer) RunKey(optionsHash string) string { return "run:" + optionsHash }

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation, e.g.
// per-user namespaces when the HTTP API fronts a shared Redis.
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(contentHash string) string {
	return k.prefix + k.inner.GraphKey(contentHash)
}

// RunKey generates a prefixed key for run-history caching.
func (k *ScopedKeyer) RunKey(optionsHash string) string {
	return k.prefix + k.inner.RunKey(optionsHash)
}

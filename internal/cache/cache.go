// Package cache provides the bounded key/value caches used for AI responses
// and image lookups.
package cache

import (
	"context"
	"time"

	"github.com/windoze95/forkful-api/internal/metrics"
)

// Cache is a byte-valued cache with time-based eviction.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// EvictOlderThan drops entries stored more than age ago and returns how many were removed.
	EvictOlderThan(ctx context.Context, age time.Duration) (int, error)
}

// instrumented records hit and miss counts for a wrapped Cache.
type instrumented struct {
	Cache
	name string
}

// WithMetrics wraps c so that every Get is counted under the given name.
func WithMetrics(c Cache, name string) Cache {
	return &instrumented{Cache: c, name: name}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok, err := i.Cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheRequestsTotal.WithLabelValues(i.name, "error").Inc()
	case ok:
		metrics.CacheRequestsTotal.WithLabelValues(i.name, "hit").Inc()
	default:
		metrics.CacheRequestsTotal.WithLabelValues(i.name, "miss").Inc()
	}
	return v, ok, err
}

// Package cache holds computed read models between mutations.
package cache

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Clear drops every entry.
	Clear()
	Close()
}

// Stats reports hit and miss counters since creation.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Ristretto is a Cache backed by a ristretto TinyLFU cache where every
// entry costs 1 and expires after a fixed TTL. Hits and misses are counted
// here because ristretto resets its own metrics on Clear.
type Ristretto[T any] struct {
	c   *ristretto.Cache[string, T]
	ttl time.Duration

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ Cache[int] = (*Ristretto[int])(nil)

// NewRistretto returns a cache holding up to maxEntries values for ttl.
// A zero ttl disables caching: Set becomes a no-op.
func NewRistretto[T any](maxEntries int64, ttl time.Duration) (*Ristretto[T], error) {
	if maxEntries < 1 {
		return nil, fmt.Errorf("cache size %d: must be positive", maxEntries)
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Ristretto[T]{c: c, ttl: ttl}, nil
}

func (r *Ristretto[T]) Get(key string) (T, bool) {
	v, ok := r.c.Get(key)
	if ok {
		r.hits.Add(1)
	} else {
		r.misses.Add(1)
	}
	return v, ok
}

// Set stores data and waits for the write buffer so the value is visible
// to the next Get.
func (r *Ristretto[T]) Set(key string, data T) {
	if r.ttl <= 0 {
		return
	}
	r.c.SetWithTTL(key, data, 1, r.ttl)
	r.c.Wait()
}

func (r *Ristretto[T]) Delete(key string) {
	r.c.Del(key)
}

func (r *Ristretto[T]) Clear() {
	r.c.Clear()
}

func (r *Ristretto[T]) Close() {
	r.c.Close()
}

func (r *Ristretto[T]) Stats() Stats {
	return Stats{Hits: r.hits.Load(), Misses: r.misses.Load()}
}

// Package cachemanager wraps go-cache with typed values and read-through loading.
package cachemanager

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/hilite/internal/log"
)

const (
	// NoExpiration keeps entries until they are deleted or flushed.
	NoExpiration = gocache.NoExpiration
	// DefaultCleanupInterval is how often expired entries are purged.
	DefaultCleanupInterval = 30 * time.Minute
)

// Manager is a typed in-memory cache keyed by string.
type Manager[V any] struct {
	useCase string
	cache   *gocache.Cache
	ttl     time.Duration

	// loadMu serializes loads so concurrent misses on one key load it once.
	loadMu sync.Mutex
}

// New creates a cache whose entries live for ttl.
// Pass NoExpiration to keep entries until Delete or Flush.
func New[V any](useCase string, ttl, cleanupInterval time.Duration) *Manager[V] {
	return &Manager[V]{
		useCase: useCase,
		cache:   gocache.New(ttl, cleanupInterval),
		ttl:     ttl,
	}
}

// Get retrieves an item by key.
func (m *Manager[V]) Get(key string) (V, bool) {
	var zero V

	value, found := m.cache.Get(key)
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatLanguage, "wrong type assertion when getting value", "cache", m.useCase, "key", key)
		return zero, false
	}

	log.Debug(log.CatLanguage, "cache hit", "cache", m.useCase, "key", key)
	return v, true
}

// Set stores value under key with the manager's ttl.
func (m *Manager[V]) Set(key string, value V) {
	m.cache.Set(key, value, m.ttl)
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors from load are returned and nothing is cached.
func (m *Manager[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	if v, ok := m.Get(key); ok {
		return v, nil
	}

	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if v, ok := m.Get(key); ok {
		return v, nil
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	m.Set(key, v)
	log.Debug(log.CatLanguage, "cache fill", "cache", m.useCase, "key", key)
	return v, nil
}

// Delete removes keys from the cache.
func (m *Manager[V]) Delete(keys ...string) {
	for _, key := range keys {
		m.cache.Delete(key)
	}
}

// Flush removes every item.
func (m *Manager[V]) Flush() {
	m.cache.Flush()
	log.Debug(log.CatLanguage, "cache flushed", "cache", m.useCase)
}

// Len returns the number of cached items, including expired ones not yet purged.
func (m *Manager[V]) Len() int {
	return m.cache.ItemCount()
}

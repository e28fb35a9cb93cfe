package cache

import "golang.org/x/sync/singleflight"

// Loader couples an LRU cache with request coalescing: concurrent misses for
// the same key run the compute function once and share the result. Rendering
// a year grid walks every period in the year, so a burst of identical
// requests should not repeat that work per request.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group
}

// NewLoader wraps an existing cache with request coalescing
func NewLoader[T any](cache *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: cache}
}

// GetOrCompute returns the value for key, computing and caching it on a
// miss. The bool reports whether the value was served from the cache.
// Errors are returned to every coalesced caller and never cached.
func (l *Loader[T]) GetOrCompute(key string, compute func() (T, error)) (T, bool, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, true, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		// A winning caller may have filled the cache while we waited.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return v, err
		}
		l.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return v.(T), false, nil
}

// Forget drops the cached value and any in-flight computation for key
func (l *Loader[T]) Forget(key string) {
	l.group.Forget(key)
	l.cache.Delete(key)
}

// Size returns the number of cached entries
func (l *Loader[T]) Size() int {
	return l.cache.Size()
}

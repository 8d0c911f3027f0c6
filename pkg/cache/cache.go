package cache

import "time"

// Cache is the interface for in-process caching of slow-changing exchange data.
type Cache interface {
	// Get returns (value, true) on a hit and (nil, false) otherwise.
	Get(key string) (any, bool)

	// Set stores value under key for ttl. It reports whether the value was admitted.
	Set(key string, value any, ttl time.Duration) bool

	Delete(key string)
	Clear()
	Close()
}

// Load returns the value cached under key, or calls load and caches its
// result for ttl. Load errors are returned and not cached. A cached value of
// another type counts as a miss. hit reports whether load was skipped.
func Load[T any](c Cache, key string, ttl time.Duration, load func() (T, error)) (value T, hit bool, err error) {
	if cached, ok := c.Get(key); ok {
		if v, ok := cached.(T); ok {
			return v, true, nil
		}
	}

	value, err = load()
	if err != nil {
		return value, false, err
	}

	c.Set(key, value, ttl)
	return value, false, nil
}

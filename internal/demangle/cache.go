package demangle

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of distinct names memoized by default.
const DefaultCacheSize = 100_000

// Cached memoizes another Demangler keyed by the exact input name. Once full, the
// least recently used names are evicted; results are unaffected.
type Cached struct {
	inner Demangler
	cache *lru.Cache[string, string]
}

// WithCache wraps inner in an LRU of the given size. A size of zero or less
// disables caching and returns inner itself.
func WithCache(inner Demangler, size int) Demangler {
	if size <= 0 {
		return inner
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return inner
	}
	return &Cached{inner: inner, cache: cache}
}

// Demangle implements Demangler.
func (c *Cached) Demangle(name string) string {
	if out, ok := c.cache.Get(name); ok {
		return out
	}
	out := c.inner.Demangle(name)
	c.cache.Add(name, out)
	return out
}

// Len returns the number of memoized names.
func (c *Cached) Len() int {
	return c.cache.Len()
}

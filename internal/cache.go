package internal

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// TTLCache is a typed wrapper around go-cache for values that are rebuilt
// wholesale on expiry (mapping directory, policy list). There is no partial
// mutation: a value is either present and current, or absent and must be
// rebuilt by the owner.
type TTLCache[T any] struct {
	c   *cache.Cache
	ttl time.Duration
}

func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		c:   cache.New(ttl, 2*ttl),
		ttl: ttl,
	}
}

func (t *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	v, found := t.c.Get(key)
	if !found {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (t *TTLCache[T]) Set(key string, value T) {
	t.c.Set(key, value, t.ttl)
}

// Invalidate drops a single entry, forcing a rebuild on next access.
func (t *TTLCache[T]) Invalidate(key string) {
	t.c.Delete(key)
}

// Flush drops all entries.
func (t *TTLCache[T]) Flush() {
	t.c.Flush()
}

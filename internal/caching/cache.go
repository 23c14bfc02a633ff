package caching

import "sync"

type Cache[TKey comparable, TValue any] interface {
	TryGet(key TKey) (TValue, bool)
	Put(key TKey, value TValue)
	Remove(key TKey)
	Clear()
}

type memoryCache[TKey comparable, TValue any] struct {
	mu     sync.RWMutex
	values map[TKey]TValue
}

func NewMemoryCache[TKey comparable, TValue any]() Cache[TKey, TValue] {
	return &memoryCache[TKey, TValue]{
		values: make(map[TKey]TValue),
	}
}

func (c *memoryCache[TKey, TValue]) TryGet(key TKey) (TValue, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.values[key]
	return value, ok
}

func (c *memoryCache[TKey, TValue]) Put(key TKey, value TValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
}

func (c *memoryCache[TKey, TValue]) Remove(key TKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
}

func (c *memoryCache[TKey, TValue]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values = make(map[TKey]TValue)
}

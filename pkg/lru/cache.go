// Package lru provides a small fixed-capacity LRU cache.
package lru

import "container/list"

type item[K comparable, V any] struct {
	key   K
	value V
}

// Cache maps keys to values and evicts the least recently used entry when
// full. It is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used
}

// New creates a new LRU cache with the given capacity.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and marks it as recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	elem, ok := c.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*item[K, V]).value, true
}

// Contains checks if a key exists in the cache without touching its recency.
func (c *Cache[K, V]) Contains(key K) bool {
	_, exists := c.items[key]
	return exists
}

// Add stores value under key. If the cache is at capacity the least recently
// used entry is evicted. Returns true if the key was newly added.
func (c *Cache[K, V]) Add(key K, value V) bool {
	if c.capacity <= 0 {
		return false
	}

	if elem, exists := c.items[key]; exists {
		elem.Value.(*item[K, V]).value = value
		c.order.MoveToFront(elem)
		return false
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.items, oldest.Value.(*item[K, V]).key)
			c.order.Remove(oldest)
		}
	}

	c.items[key] = c.order.PushFront(&item[K, V]{key: key, value: value})
	return true
}

// Len returns the current number of items in the cache.
func (c *Cache[K, V]) Len() int {
	return len(c.items)
}

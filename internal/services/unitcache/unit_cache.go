// Package unitcache holds the in-memory mapping from Motive vehicle ID to
// unit display name. Entries never expire by time; capacity is bounded with
// least-recently-used eviction so a large fleet cannot grow the map without
// limit.
package unitcache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is used when no capacity is configured.
const DefaultCapacity = 100

type entry struct {
	key   int64
	value string
}

// Cache is a concurrency-safe fixed-capacity LRU cache. Both Get hits and
// Set insertions count as use. The lock is held only for the duration of a
// single operation, never across network calls.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[int64]*list.Element
	order    *list.List
}

// New creates a Cache with the given capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[int64]*list.Element),
		order:    list.New(),
	}
}

// Get returns the cached unit name for key and marks the entry as recently
// used. The second return is false on a miss.
func (c *Cache) Get(key int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// Set stores the unit name for key, evicting the least-recently-used entry
// when the cache is full.
func (c *Cache) Set(key int64, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).value = value
		c.order.MoveToFront(elem)
		return
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: value})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]*list.Element)
	c.order.Init()
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

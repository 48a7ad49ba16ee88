package cache

import "sync"

// Cache is a generic thread-safe LRU cache aged in frames.
// When the cache exceeds softLimit, least recently used entries are evicted.
type Cache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*cacheEntry[K, V]
	lru       *ageRing[K]
	softLimit int
	frame     uint64
	onEvict   func(K, V)
	pinned    func(K, V) bool
	evictions uint64
}

// cacheEntry holds a cached value with the frame it was last touched in.
type cacheEntry[K comparable, V any] struct {
	value V
	frame uint64
	node  *ageNode[K]
}

// New creates a cache with the given soft limit and eviction callback.
// A softLimit of 0 means unlimited; onEvict may be nil.
func New[K comparable, V any](softLimit int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:   make(map[K]*cacheEntry[K, V]),
		lru:       newAgeRing[K](),
		softLimit: softLimit,
		onEvict:   onEvict,
	}
}

// SetPinned installs a predicate reporting entries that must survive the
// soft limit and Sweep. The cache may then exceed its soft limit. Clear and
// Take ignore it. pinned runs with the cache lock held.
func (c *Cache[K, V]) SetPinned(pinned func(K, V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned = pinned
}

// Get retrieves a value and marks it used in the current frame.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	entry.frame = c.frame
	c.lru.Touch(entry.node)
	return entry.value, true
}

// Set stores a value. An existing value under key is replaced without
// calling the eviction callback.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.value = value
		entry.frame = c.frame
		c.lru.Touch(entry.node)
		return
	}
	c.entries[key] = &cacheEntry[K, V]{
		value: value,
		frame: c.frame,
		node:  c.lru.Push(key),
	}
	if c.softLimit > 0 {
		for len(c.entries) > c.softLimit && c.evictOldestUnpinned() {
		}
	}
}

// Take removes and returns the value under key without calling the
// eviction callback. Ownership passes to the caller.
func (c *Cache[K, V]) Take(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.Remove(entry.node)
	delete(c.entries, key)
	return entry.value, true
}

// Advance starts the next frame and returns its number.
func (c *Cache[K, V]) Advance() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame++
	return c.frame
}

// Frame returns the current frame number.
func (c *Cache[K, V]) Frame() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// Sweep evicts unpinned entries not touched during the last maxAge frames
// and returns how many were evicted.
func (c *Cache[K, V]) Sweep(maxAge uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for node := c.lru.Back(); node != nil; {
		newer := c.lru.Newer(node)
		entry := c.entries[node.key]
		if entry.frame+maxAge >= c.frame {
			break
		}
		if !c.isPinned(node.key, entry) {
			c.evict(node)
			n++
		}
		node = newer
	}
	return n
}

// Clear evicts all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for node := c.lru.Back(); node != nil; node = c.lru.Back() {
		c.evict(node)
	}
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Frame:     c.frame,
		Evictions: c.evictions,
	}
}

// evictOldestUnpinned evicts the least recently used unpinned entry and
// reports whether one was found. Caller must hold c.mu.
func (c *Cache[K, V]) evictOldestUnpinned() bool {
	for node := c.lru.Back(); node != nil; node = c.lru.Newer(node) {
		if !c.isPinned(node.key, c.entries[node.key]) {
			c.evict(node)
			return true
		}
	}
	return false
}

func (c *Cache[K, V]) isPinned(key K, entry *cacheEntry[K, V]) bool {
	return c.pinned != nil && c.pinned(key, entry.value)
}

// evict removes node and its entry. Caller must hold c.mu.
func (c *Cache[K, V]) evict(node *ageNode[K]) {
	entry := c.entries[node.key]
	c.lru.Remove(node)
	delete(c.entries, node.key)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(node.key, entry.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit, 0 if unlimited.
	Capacity int
	// Frame is the current frame number.
	Frame uint64
	// Evictions is the number of evicted entries.
	Evictions uint64
}

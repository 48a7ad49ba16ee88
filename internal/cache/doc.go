// Package cache provides a frame-aged LRU cache for GPU resources.
//
// Entries are stamped with the current frame whenever they are touched.
// Advance moves to the next frame and Sweep evicts entries that have not been
// touched for a given number of frames:
//
//	c := cache.New[key, *texture](64, func(k key, t *texture) { t.Destroy() })
//	c.Set(k, t)
//	...
//	c.Advance()
//	c.Sweep(3) // destroy entries idle for more than 3 frames
//
// # Thread Safety
//
// Cache is safe for concurrent use and must not be copied after creation.
// The eviction callback runs with the cache lock held and must not call back
// into the cache.
package cache

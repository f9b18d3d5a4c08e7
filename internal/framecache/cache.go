// Package framecache provides the bounded decoded-frame store shared by
// the playback driver and the prefetch worker, plus the buffer capacity
// estimator.
package framecache

import (
	"sync"

	"github.com/llehouerou/flipbook/internal/anim"
)

// Cache is a concurrency-safe mapping of frame index to decoded frame.
//
// Every operation runs under a single mutex held for its duration, which
// makes individual reads and writes linearizable. Decode work never
// happens under the lock; only the resulting insert does.
type Cache struct {
	mu     sync.Mutex
	frames map[int]anim.Frame
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{frames: make(map[int]anim.Frame)}
}

// Get returns the frame at index, or nil if not cached.
func (c *Cache) Get(index int) anim.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames[index]
}

// Put stores the frame at index, overwriting any existing entry.
func (c *Cache) Put(index int, frame anim.Frame) {
	if frame == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames[index] = frame
}

// Remove evicts the entry at index.
func (c *Cache) Remove(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.frames, index)
}

// RemoveAllExcept evicts every entry except the one at keep. Used by the
// memory-pressure handler; serializes with concurrent Puts from the
// prefetch worker through the same lock.
func (c *Cache) RemoveAllExcept(keep int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for index := range c.frames {
		if index != keep {
			delete(c.frames, index)
		}
	}
}

// Clear evicts everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.frames)
}

// Count returns the number of cached frames.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

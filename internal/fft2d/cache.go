package fft2d

import "sync"

// Cache shares engines between runs on planes of the same shape.
type Cache struct {
	engines sync.Map // [2]int{w, h} -> *Engine
}

func NewCache() *Cache {
	return &Cache{}
}

// Engine returns the engine for a w x h plane, building it on first use.
func (c *Cache) Engine(w, h int) *Engine {
	key := [2]int{w, h}
	if v, ok := c.engines.Load(key); ok {
		return v.(*Engine)
	}
	actual, _ := c.engines.LoadOrStore(key, New(w, h))
	return actual.(*Engine)
}

// Package generic holds small type-safe wrappers over standard containers.
package generic

import "sync"

// Pool is a typed sync.Pool. Values handed back with Put are passed through
// the reset function first, when one is set.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// NewPool creates a pool that allocates with newFn. reset may be nil.
func NewPool[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() any { return newFn() }
	return p
}

// NewHotPool is NewPool with size values allocated up front.
func NewHotPool[T any](newFn func() T, reset func(T), size int) *Pool[T] {
	p := NewPool(newFn, reset)
	for i := 0; i < size; i++ {
		p.pool.Put(newFn())
	}
	return p
}

// Get returns a pooled value or a new one.
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put resets value and returns it to the pool.
func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		p.reset(value)
	}
	p.pool.Put(value)
}

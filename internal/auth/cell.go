package auth

import "sync"

// Cell is a single-writer observable value. It replaces the global mutable
// login flag: created at the composition root and injected, never a
// package-level singleton. Subscribers receive the current value on
// subscription and every subsequent change.
type Cell[T comparable] struct {
	mu    sync.Mutex
	value T
	subs  map[int]chan T
	next  int
}

// NewCell creates a cell holding the initial value.
func NewCell[T comparable](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set publishes a new value to all subscribers. Setting an unchanged value
// is a no-op.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == c.value {
		return
	}
	c.value = value
	for _, sub := range c.subs {
		// Coalesce: a slow subscriber loses intermediate values but always
		// finds the latest one in its buffer.
		select {
		case <-sub:
		default:
		}
		sub <- value
	}
}

// Subscribe returns a channel of value changes and a cancel function.
// Cancelling twice is a no-op.
func (c *Cell[T]) Subscribe() (<-chan T, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan T, 1)
	ch <- c.value
	id := c.next
	c.next++
	c.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

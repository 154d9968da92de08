package content

import (
	"sync"

	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type Record = model.Record

// Collection is an ordered, concurrency-safe list of records. Order is the
// order rows were received in.
type Collection[T Record] struct {
	mu    sync.RWMutex
	items []T
}

func NewCollection[T Record](items ...T) *Collection[T] {
	c := &Collection[T]{}
	c.Replace(items)
	return c
}

// Items returns a copy.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Replace(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

// Append adds item at the end, or splices it in place if its id is already present.
func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.RecordID() == item.RecordID() {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// Splice replaces the record with item's id, keeping its position. It
// reports false (and changes nothing) when no such record exists.
func (c *Collection[T]) Splice(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, it := range c.items {
		if it.RecordID() == item.RecordID() {
			c.items[i] = item
			return true
		}
	}
	return false
}

func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items[:0:0]
	for _, it := range c.items {
		if it.RecordID() != id {
			out = append(out, it)
		}
	}
	removed := len(out) != len(c.items)
	c.items = out
	return removed
}

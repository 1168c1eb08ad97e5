package pipeline

import "slices"

// Collector accumulates distinct candidate tuples in first-seen order.
type Collector[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

// NewCollector creates an empty collector.
func NewCollector[T comparable]() *Collector[T] {
	return &Collector[T]{seen: make(map[T]struct{})}
}

// Add stores item unless an equal tuple was already added.
// Returns true if the item was new.
func (c *Collector[T]) Add(item T) bool {
	if _, ok := c.seen[item]; ok {
		return false
	}
	c.seen[item] = struct{}{}
	c.items = append(c.items, item)
	return true
}

// Len returns the number of distinct items.
func (c *Collector[T]) Len() int {
	return len(c.items)
}

// Sorted returns a sorted copy of the distinct items.
func (c *Collector[T]) Sorted(cmp func(a, b T) int) []T {
	out := slices.Clone(c.items)
	slices.SortStableFunc(out, cmp)
	return out
}

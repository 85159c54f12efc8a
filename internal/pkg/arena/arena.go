// Package arena provides an insertion-ordered keyed container.
//
// Arena is not safe for concurrent use; owners guard it with their own lock.
package arena

import "iter"

type Arena[K comparable, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

func New[K comparable, V any]() *Arena[K, V] {
	return &Arena[K, V]{index: make(map[K]int)}
}

// Get returns the value stored under key.
func (a *Arena[K, V]) Get(key K) (V, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return a.vals[i], true
}

func (a *Arena[K, V]) Has(key K) bool {
	_, ok := a.index[key]
	return ok
}

// Put inserts or replaces the value under key. A replaced value keeps its
// original position. It reports whether the key was newly inserted.
func (a *Arena[K, V]) Put(key K, val V) bool {
	if i, ok := a.index[key]; ok {
		a.vals[i] = val
		return false
	}
	a.index[key] = len(a.keys)
	a.keys = append(a.keys, key)
	a.vals = append(a.vals, val)
	return true
}

// Delete removes key and returns the value it held.
func (a *Arena[K, V]) Delete(key K) (V, bool) {
	i, ok := a.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	val := a.vals[i]
	delete(a.index, key)
	a.keys = append(a.keys[:i], a.keys[i+1:]...)
	a.vals = append(a.vals[:i], a.vals[i+1:]...)
	for j := i; j < len(a.keys); j++ {
		a.index[a.keys[j]] = j
	}
	return val, true
}

func (a *Arena[K, V]) Len() int { return len(a.keys) }

// Clear drops every entry.
func (a *Arena[K, V]) Clear() {
	a.index = make(map[K]int)
	a.keys = nil
	a.vals = nil
}

// All iterates entries in insertion order.
func (a *Arena[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range a.keys {
			if !yield(k, a.vals[i]) {
				return
			}
		}
	}
}

// Values returns a copy of the values in insertion order.
func (a *Arena[K, V]) Values() []V {
	out := make([]V, len(a.vals))
	copy(out, a.vals)
	return out
}

func (a *Arena[K, V]) Keys() []K {
	out := make([]K, len(a.keys))
	copy(out, a.keys)
	return out
}

// Clone returns a shallow copy. Values are copied by assignment.
func (a *Arena[K, V]) Clone() *Arena[K, V] {
	c := &Arena[K, V]{
		index: make(map[K]int, len(a.index)),
		keys:  make([]K, len(a.keys)),
		vals:  make([]V, len(a.vals)),
	}
	copy(c.keys, a.keys)
	copy(c.vals, a.vals)
	for k, i := range a.index {
		c.index[k] = i
	}
	return c
}

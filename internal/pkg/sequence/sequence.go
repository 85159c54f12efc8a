// Package sequence hands out monotonically increasing integer identities.
package sequence

import "sync"

// Generator issues ids strictly greater than the value it was seeded with.
// The zero value starts at 1.
type Generator struct {
	mu   sync.Mutex
	last int
}

// New returns a generator whose first id is last+1.
func New(last int) *Generator {
	return &Generator{last: last}
}

func (g *Generator) Next() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return g.last
}

// Peek returns the id the next call to Next will return.
func (g *Generator) Peek() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last + 1
}

// Reset reseeds the generator so the next id is last+1.
func (g *Generator) Reset(last int) {
	g.mu.Lock()
	g.last = last
	g.mu.Unlock()
}

// Package cache provides the LRU cache of compiled expressions.
//
// Parsing dominates the cost of evaluating short expressions, and templates
// evaluate the same expression text repeatedly (for example once per list
// item per render), so the engine caches source text → AST. The cache is
// safe for concurrent use.
package cache

import (
	"container/list"
	"sync"

	"hexbind/enclave/pkg/expr/ast"
)

// LRU is a capacity-bounded least-recently-used cache keyed by raw
// expression source text.
type LRU struct {
	capacity int

	mu      sync.Mutex
	order   *list.List // front = most recently used
	entries map[string]*list.Element
}

type entry struct {
	source string
	node   ast.Node
}

// New creates an LRU cache holding up to capacity compiled expressions.
func New(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Get returns the cached AST for source, marking it most recently used.
func (c *LRU) Get(source string) (ast.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[source]
	if !ok {
		return nil, false
	}

	c.order.MoveToFront(elem)
	return elem.Value.(*entry).node, true
}

// Put inserts a compiled expression, evicting the least recently used entry
// when the cache is over capacity.
func (c *LRU) Put(source string, node ast.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[source]; ok {
		elem.Value.(*entry).node = node
		c.order.MoveToFront(elem)
		return
	}

	c.entries[source] = c.order.PushFront(&entry{source: source, node: node})

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).source)
	}
}

// Len returns the number of cached expressions.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge removes all cached expressions.
func (c *LRU) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}

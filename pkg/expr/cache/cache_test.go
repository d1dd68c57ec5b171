package cache

import (
	"fmt"
	"testing"

	"hexbind/enclave/pkg/expr/ast"
	"hexbind/enclave/pkg/expr/value"
)

func node(n float64) ast.Node {
	return &ast.Literal{Value: value.Number(n)}
}

func TestLRU_HitAndMiss(t *testing.T) {
	c := New(10)

	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss on empty cache")
	}

	c.Put("a", node(1))

	got, ok := c.Get("a")
	if !ok {
		t.Fatal("Expected hit after Put")
	}
	if got.(*ast.Literal).Value.NumberVal() != 1 {
		t.Error("Expected cached node back")
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(3)

	c.Put("a", node(1))
	c.Put("b", node(2))
	c.Put("c", node(3))

	// Touch "a" so "b" becomes least recently used.
	c.Get("a")

	// Inserting a fourth entry evicts "b".
	c.Put("d", node(4))

	if _, ok := c.Get("b"); ok {
		t.Error("Expected least-recently-used entry to be evicted")
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("Expected %q to survive eviction", key)
		}
	}
}

func TestLRU_NeverExceedsCapacity(t *testing.T) {
	c := New(5)

	for i := 0; i < 50; i++ {
		c.Put(fmt.Sprintf("expr-%d", i), node(float64(i)))
		if c.Len() > 5 {
			t.Fatalf("Cache grew past capacity: %d", c.Len())
		}
	}

	if c.Len() != 5 {
		t.Errorf("Expected cache at capacity, got %d", c.Len())
	}
}

func TestLRU_PutExistingUpdates(t *testing.T) {
	c := New(3)

	c.Put("a", node(1))
	c.Put("a", node(2))

	if c.Len() != 1 {
		t.Errorf("Expected single entry, got %d", c.Len())
	}

	got, _ := c.Get("a")
	if got.(*ast.Literal).Value.NumberVal() != 2 {
		t.Error("Expected updated node")
	}
}

func TestLRU_Purge(t *testing.T) {
	c := New(3)
	c.Put("a", node(1))
	c.Put("b", node(2))

	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Expected empty cache after purge, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Expected miss after purge")
	}
}

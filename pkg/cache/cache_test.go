package cache_test

import (
	"errors"
	"testing"

	"github.com/gistol/sqljson/pkg/cache"
)

func TestGetSet(t *testing.T) {
	c := cache.New[int](4)

	if _, ok := c.Get("a"); ok {
		t.Fatal("Get on empty cache reported ok")
	}

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after replace = %d", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRUEviction(t *testing.T) {
	c := cache.New[int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a was evicted despite being recently used")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c missing")
	}
}

func TestGetOrCompute(t *testing.T) {
	c := cache.New[string](4)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrCompute("k", compute)
		if err != nil || v != "value" {
			t.Fatalf("GetOrCompute = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	wantErr := errors.New("boom")
	_, err := c.GetOrCompute("bad", func() (string, error) { return "", wantErr })
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("failed compute was cached")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := cache.New[int](4)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a survived Invalidate")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if c.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", c.Capacity())
	}
}

func TestDefaultCapacity(t *testing.T) {
	c := cache.New[int](0)
	if c.Capacity() != 256 {
		t.Errorf("Capacity() = %d, want default 256", c.Capacity())
	}
}

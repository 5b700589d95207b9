package cache

import (
	"path/filepath"
	"testing"
)

func TestDiskCache_PersistsAcrossOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskCache() error: %v", err)
	}
	c.Set("key1", entry(1))
	c.Set("nil", nil)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reopened, err := NewDiskCache(dir, 0)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	got, found := reopened.Get("key1")
	if !found {
		t.Fatal("Get() after reopen = miss, want found")
	}
	if got.Interfaces != 1 || got.Violations[0].RuleID != "LEN-001" {
		t.Errorf("Get() = %+v", got)
	}
	if _, found := reopened.Get("nil"); found {
		t.Error("nil entry was stored")
	}

	stats := reopened.Stats()
	if stats.Entries != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestDiskCache_DeleteAndClear(t *testing.T) {
	c, err := NewDiskCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewDiskCache() error: %v", err)
	}
	defer c.Close()

	c.Set("a", entry(1))
	c.Set("b", entry(2))

	c.Delete("a")
	if _, found := c.Get("a"); found {
		t.Error("deleted key still present")
	}

	c.Clear()
	if _, found := c.Get("b"); found {
		t.Error("key present after Clear()")
	}
	if n := c.Stats().Entries; n != 0 {
		t.Errorf("Entries = %d after Clear()", n)
	}
}

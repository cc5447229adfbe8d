package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestID_Deterministic(t *testing.T) {
	a := ID("text", "0.8", "2025.1")
	b := ID("text", "0.8", "2025.1")
	if a != b {
		t.Errorf("Expected equal ids, got %s and %s", a, b)
	}
	if a.Version() != 5 {
		t.Errorf("Expected UUID version 5, got %d", a.Version())
	}
	if ID("ab", "c") == ID("a", "bc") {
		t.Error("Expected part boundaries to change the id")
	}
	if key := Key(a); !strings.HasPrefix(key, KeyPrefix) || !strings.HasSuffix(key, a.String()) {
		t.Errorf("Unexpected key %q", key)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	value := []byte("report")

	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value[0] = 'X'

	got, ok := c.Get("k")
	if !ok || string(got) != "report" {
		t.Errorf("Expected stored copy %q, got %q (found=%v)", "report", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to be deleted")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key(ID("disk"))

	if err := c.Set(key, []byte(`{"verdict":"REAL"}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok := c.Get(key)
	if !ok || string(got) != `{"verdict":"REAL"}` {
		t.Errorf("Expected stored value, got %q (found=%v)", got, ok)
	}

	// Expired entries are removed on read
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, ok := c.Get(key); ok {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(c.path(key)); !os.IsNotExist(err) {
		t.Errorf("Expected expired file to be removed, got %v", err)
	}

	if err := c.Delete(key); err != nil {
		t.Errorf("Expected deleting a missing entry to succeed, got %v", err)
	}
}

func TestDiskCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := Key(ID("corrupt"))

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(key); ok {
		t.Error("Expected corrupt entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	key := Key(ID("layered"))

	if err := c.disk.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("disk set: %v", err)
	}
	if _, ok := c.memory.Get(key); ok {
		t.Fatal("Expected memory miss before promotion")
	}

	if got, ok := c.Get(key); !ok || string(got) != "v" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", got, ok)
	}
	if _, ok := c.memory.Get(key); !ok {
		t.Error("Expected disk hit to be promoted to memory")
	}

	if err := c.Clear(); err != nil {
		t.Errorf("clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("Expected miss after clear")
	}
}

func TestNew(t *testing.T) {
	if _, ok := New(false, "", time.Minute, time.Hour).(Nop); !ok {
		t.Error("Expected disabled cache to be Nop")
	}
	if _, ok := New(true, "", time.Minute, time.Hour).(*MemoryCache); !ok {
		t.Error("Expected memory-only cache without a dir")
	}
	if _, ok := New(true, t.TempDir(), time.Minute, time.Hour).(*LayeredCache); !ok {
		t.Error("Expected layered cache with a dir")
	}
}

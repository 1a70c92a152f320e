package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey_StableAndDistinct(t *testing.T) {
	a := Key("https://example.com/page")
	b := Key("https://example.com/page")
	c := Key("https://example.com/other")

	if a != b {
		t.Error("same URL must produce the same key")
	}
	if a == c {
		t.Error("different URLs must produce different keys")
	}
	if !strings.HasPrefix(a, "prodfact:v1:") {
		t.Errorf("key missing version prefix: %q", a)
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("unexpected hit for missing key")
	}

	if err := c.Set("k", []byte("value"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found := c.Get("k")
	if !found || string(got) != "value" {
		t.Errorf("expected hit with value, got %q found=%v", got, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set(Key("https://example.com/p"), []byte("body"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found := c.Get(Key("https://example.com/p"))
	if !found || string(got) != "body" {
		t.Errorf("expected hit with body, got %q found=%v", got, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCache_IgnoresCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := os.WriteFile(filepath.Join(dir, "bad.cache"), []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("bad"); found {
		t.Error("corrupt entry must read as a miss")
	}
}

func TestDiskCache_NoPartialFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("seed disk: %v", err)
	}

	// First read comes from disk and promotes into memory.
	got, found := c.Get("k")
	if !found || string(got) != "v" {
		t.Fatalf("expected layered hit, got %q found=%v", got, found)
	}
	if _, found := c.memory.Get("k"); !found {
		t.Error("expected disk hit promoted into memory")
	}
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, found := c.memory.Get("k"); !found {
		t.Error("expected memory layer hit")
	}
	if _, found := c.disk.Get("k"); !found {
		t.Error("expected disk layer hit")
	}
}

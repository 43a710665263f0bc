package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	key := "run:abc123"
	value := []byte(`{"names":["cut_edges"]}`)

	// Miss before set.
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Errorf("Get() before Set = ok %v, err %v, want miss", ok, err)
	}

	if err := c.Set(ctx, key, value, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() after Set = miss, want hit")
	}
	if string(got) != string(value) {
		t.Errorf("Get() = %q, want %q", got, value)
	}

	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, key); ok {
		t.Error("Get() after Delete = hit, want miss")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "ephemeral"); err != nil || ok {
		t.Errorf("Get() after expiry = ok %v, err %v, want miss", ok, err)
	}
}

func TestFileCacheShardsEntriesByHash(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	key := "graph:deadbeef"
	if err := c.Set(ctx, key, []byte("x"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	sum := Hash([]byte(key))
	want := filepath.Join(dir, sum[:2], sum[2:]+".json")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("entry not stored at sharded path %q: %v", want, err)
	}
}

func TestFileCacheDeleteMissingKey(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c.Delete(context.Background(), "never-set"); err != nil {
		t.Errorf("Delete() missing key error = %v, want nil", err)
	}
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Errorf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("Get() = ok %v, err %v, want permanent miss", ok, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.GraphKey("deadbeef"); got != "graph:deadbeef" {
		t.Errorf("GraphKey() = %q, want %q", got, "graph:deadbeef")
	}
	if got := k.RunKey("cafe"); got != "run:cafe" {
		t.Errorf("RunKey() = %q, want %q", got, "run:cafe")
	}
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(nil, "tenant42:")

	if got := k.GraphKey("deadbeef"); got != "tenant42:graph:deadbeef" {
		t.Errorf("GraphKey() = %q, want %q", got, "tenant42:graph:deadbeef")
	}
	if got := k.RunKey("cafe"); got != "tenant42:run:cafe" {
		t.Errorf("RunKey() = %q, want %q", got, "tenant42:run:cafe")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	h3 := Hash([]byte("world"))

	if h1 != h2 {
		t.Error("Hash() not deterministic")
	}
	if h1 == h3 {
		t.Error("Hash() collision for different inputs")
	}
	if len(h1) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(h1))
	}
}

func TestHashJSON(t *testing.T) {
	type opts struct {
		Steps int    `json:"steps"`
		Seed  uint64 `json:"seed"`
	}

	h1, err := HashJSON(opts{Steps: 100, Seed: 7})
	if err != nil {
		t.Fatalf("HashJSON() error = %v", err)
	}
	h2, err := HashJSON(opts{Steps: 100, Seed: 7})
	if err != nil {
		t.Fatalf("HashJSON() error = %v", err)
	}
	h3, err := HashJSON(opts{Steps: 100, Seed: 8})
	if err != nil {
		t.Fatalf("HashJSON() error = %v", err)
	}

	if h1 != h2 {
		t.Error("HashJSON() not deterministic for equal values")
	}
	if h1 == h3 {
		t.Error("HashJSON() collision for different values")
	}
}

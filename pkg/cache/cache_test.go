package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok {
		t.Error("Get() ok = true, want miss")
	}
	if data != nil {
		t.Errorf("Get() data = %v, want nil", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	h3 := Hash([]byte("world"))

	if h1 != h2 {
		t.Errorf("Hash() not deterministic: %q != %q", h1, h2)
	}
	if h1 == h3 {
		t.Error("Hash() collision for different inputs")
	}
	if len(h1) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyerPartitionKey(t *testing.T) {
	keyer := NewDefaultKeyer()
	base := PartitionKeyOpts{NParts: 4, Seed: 42, BalanceFactor: 1.03, MaxPasses: 10}

	key := keyer.PartitionKey("graphhash", base)
	if !strings.HasPrefix(key, "partition:") {
		t.Errorf("PartitionKey() = %q, want partition: prefix", key)
	}

	tests := []struct {
		name string
		hash string
		opts PartitionKeyOpts
	}{
		{
			name: "DifferentGraph",
			hash: "otherhash",
			opts: base,
		},
		{
			name: "DifferentNParts",
			hash: "graphhash",
			opts: PartitionKeyOpts{NParts: 8, Seed: 42, BalanceFactor: 1.03, MaxPasses: 10},
		},
		{
			name: "DifferentSeed",
			hash: "graphhash",
			opts: PartitionKeyOpts{NParts: 4, Seed: 7, BalanceFactor: 1.03, MaxPasses: 10},
		},
		{
			name: "DifferentBalance",
			hash: "graphhash",
			opts: PartitionKeyOpts{NParts: 4, Seed: 42, BalanceFactor: 1.1, MaxPasses: 10},
		},
		{
			name: "SkipRefinement",
			hash: "graphhash",
			opts: PartitionKeyOpts{NParts: 4, Seed: 42, BalanceFactor: 1.03, MaxPasses: 10, SkipRefinement: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := keyer.PartitionKey(tt.hash, tt.opts)
			if other == key {
				t.Errorf("PartitionKey() = %q for changed input, want a different key", other)
			}
		})
	}

	if again := keyer.PartitionKey("graphhash", base); again != key {
		t.Errorf("PartitionKey() not deterministic: %q != %q", again, key)
	}
}

func TestDefaultKeyerArtifactKey(t *testing.T) {
	keyer := NewDefaultKeyer()
	base := ArtifactKeyOpts{Format: "svg", Layout: "neato"}

	key := keyer.ArtifactKey("parthash", base)
	if !strings.HasPrefix(key, "artifact:") {
		t.Errorf("ArtifactKey() = %q, want artifact: prefix", key)
	}

	if other := keyer.ArtifactKey("parthash", ArtifactKeyOpts{Format: "png", Layout: "neato"}); other == key {
		t.Error("ArtifactKey() identical for different formats")
	}
	if other := keyer.ArtifactKey("parthash", ArtifactKeyOpts{Format: "svg", Layout: "dot"}); other == key {
		t.Error("ArtifactKey() identical for different layouts")
	}
	if other := keyer.ArtifactKey("parthash", ArtifactKeyOpts{Format: "svg", Layout: "neato", ShowWeights: true}); other == key {
		t.Error("ArtifactKey() identical with and without weights")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "team:routing:")

	opts := PartitionKeyOpts{NParts: 2, Seed: 42, BalanceFactor: 1.03}
	key := scoped.PartitionKey("graphhash", opts)

	if !strings.HasPrefix(key, "team:routing:partition:") {
		t.Errorf("PartitionKey() = %q, want team:routing:partition: prefix", key)
	}
	if want := "team:routing:" + inner.PartitionKey("graphhash", opts); key != want {
		t.Errorf("PartitionKey() = %q, want %q", key, want)
	}

	art := scoped.ArtifactKey("parthash", ArtifactKeyOpts{Format: "dot"})
	if !strings.HasPrefix(art, "team:routing:artifact:") {
		t.Errorf("ArtifactKey() = %q, want team:routing:artifact: prefix", art)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	key := scoped.PartitionKey("h", PartitionKeyOpts{NParts: 2})
	if !strings.HasPrefix(key, "p:partition:") {
		t.Errorf("PartitionKey() = %q, want p:partition: prefix", key)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v, want miss", ok, err)
	}

	if err := c.Set(ctx, "key", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Get() ok = false, want hit")
	}
	if string(data) != "payload" {
		t.Errorf("Get() data = %q, want %q", data, "payload")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get() after Delete() hit, want miss")
	}

	// Deleting twice must not fail.
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() second call error = %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("Get() on expired entry = ok %v, err %v, want miss", ok, err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("fine"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Overwrite the stored entry with garbage.
	hash := Hash([]byte("key"))
	path := filepath.Join(dir, hash[:2], hash[2:]+".json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, ok, err := c.Get(ctx, "key"); err != nil || ok {
		t.Errorf("Get() on corrupt entry = ok %v, err %v, want miss", ok, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

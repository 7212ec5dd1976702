// Package cache provides the caching layer for partitioning runs.
//
// A Cache stores opaque byte blobs under string keys with optional TTLs.
// Three backends are included: FileCache for CLI usage, RedisCache for
// shared deployments, and NullCache to disable caching. A Keyer builds the
// keys so that every input that affects a result is part of its key.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Partitions are pure functions of their key, so they
// keep for a long time; rendered artifacts are cheap to recompute.
const (
	TTLPartition = 30 * 24 * time.Hour
	TTLArtifact  = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PartitionKeyOpts carries every option that changes a partitioning result.
type PartitionKeyOpts struct {
	NParts         int     `json:"nparts"`
	Seed           uint64  `json:"seed"`
	BalanceFactor  float64 `json:"balance_factor"`
	MaxPasses      int     `json:"max_passes"`
	CoarsenTo      int     `json:"coarsen_to"`
	SkipRefinement bool    `json:"skip_refinement"`
}

// ArtifactKeyOpts carries every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format      string `json:"format"`
	Layout      string `json:"layout"`
	ShowWeights bool   `json:"show_weights"`
}

// Keyer builds cache keys from content hashes and options.
type Keyer interface {
	// PartitionKey keys a partition result by the graph content hash and
	// the partitioning options.
	PartitionKey(graphHash string, opts PartitionKeyOpts) string

	// ArtifactKey keys a rendered artifact by the partition content hash
	// and the rendering options.
	ArtifactKey(partHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PartitionKey generates a key for partition result caching.
func (k *DefaultKeyer) PartitionKey(graphHash string, opts PartitionKeyOpts) string {
	return hashKey("partition", graphHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(partHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", partHash, opts)
}

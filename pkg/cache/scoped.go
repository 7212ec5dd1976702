package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// example when several projects share one Redis instance.
//
// Example usage:
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:routing:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PartitionKey generates a prefixed key for partition result caching.
func (k *ScopedKeyer) PartitionKey(graphHash string, opts PartitionKeyOpts) string {
	return k.prefix + k.inner.PartitionKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(partHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(partHash, opts)
}

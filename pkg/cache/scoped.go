package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when a shared backend such as Redis holds snapshots of
// several deployments side by side.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	key := staging.DocumentsKey("https://www.re3data.org/api/beta/repositories")
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

// DocumentsKey generates a prefixed snapshot key.
func (k *ScopedKeyer) DocumentsKey(indexURL string) string {
	return k.prefix + k.inner.DocumentsKey(indexURL)
}

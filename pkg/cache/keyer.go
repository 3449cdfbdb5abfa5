package cache

// Keyer derives cache keys for harvest snapshots.
// Backends that address entries by key (directory, Redis) use it; the
// path backend takes the artifact path as its key instead.
type Keyer interface {
	// DocumentsKey returns the key of the raw document snapshot harvested
	// from the given registry index URL.
	DocumentsKey(indexURL string) string
}

// DefaultKeyer hashes the index URL so that different registries (or test
// servers) never share a snapshot.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key derivation.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentsKey returns "documents:<sha256(indexURL)>".
func (DefaultKeyer) DocumentsKey(indexURL string) string {
	return hashKey("documents", indexURL)
}

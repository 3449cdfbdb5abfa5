// Package harvest loads the raw registry documents from a cache, or fetches
// and caches them on a cold run.
//
//	store := harvest.NewStore(cache.NewPathCache(), re3data.NewClient(cfg), logger)
//	docs, hit, err := store.LoadOrFetch(ctx, "./data/re3data_repo_dump")
//
// A cached snapshot is returned as-is: there is no staleness check. A failed
// fetch writes nothing, and a cache hit writes nothing.
package harvest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/re3facet/pkg/cache"
	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/observability"
	"github.com/matzehuels/re3facet/pkg/registry"
)

const keyType = "documents"

// Fetcher retrieves the full document collection from the registry.
// *re3data.Client implements it.
type Fetcher interface {
	Harvest(ctx context.Context) ([]registry.RawDocument, error)
}

// Store combines a cache backend with a registry fetcher.
type Store struct {
	Cache   cache.Cache
	Fetcher Fetcher
	TTL     time.Duration // Entry lifetime for expiring backends, 0 = forever
	Refresh bool          // Skip the cache read and always fetch
	Logger  *log.Logger
}

// NewStore creates a Store. A nil cache selects cache.NullCache and a nil
// logger selects log.Default().
func NewStore(c cache.Cache, f Fetcher, logger *log.Logger) *Store {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{Cache: c, Fetcher: f, Logger: logger}
}

// LoadOrFetch returns the snapshot stored under key, reporting hit=true, or
// harvests the registry, stores the result under key and returns it.
func (s *Store) LoadOrFetch(ctx context.Context, key string) ([]registry.RawDocument, bool, error) {
	hooks := observability.Cache()

	if !s.Refresh {
		data, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeCache, err, "read cache %s", key)
		}
		if ok {
			docs, err := Decode(data)
			if err != nil {
				return nil, false, errors.Wrap(errors.ErrCodeCache, err, "decode cache %s", key)
			}
			hooks.OnCacheHit(ctx, keyType)
			s.Logger.Debug("loaded cached documents", "key", key, "count", len(docs))
			return docs, true, nil
		}
		hooks.OnCacheMiss(ctx, keyType)
	}

	if s.Fetcher == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidConfig, "no cached documents under %s and no fetcher configured", key)
	}
	docs, err := s.Fetcher.Harvest(ctx)
	if err != nil {
		return nil, false, err
	}

	data, err := Encode(docs)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode documents")
	}
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		s.Logger.Warn("could not write cache", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return docs, false, nil
}

// Invalidate removes the snapshot stored under key.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	return s.Cache.Delete(ctx, key)
}

// Encode serializes docs as a JSON array of base64 strings. Documents are
// stored as bytes so markup that is not valid UTF-8 survives unchanged.
func Encode(docs []registry.RawDocument) ([]byte, error) {
	raw := make([][]byte, len(docs))
	for i, d := range docs {
		raw[i] = []byte(d)
	}
	return json.Marshal(raw)
}

// Decode is the inverse of Encode; the markup round-trips byte for byte.
func Decode(data []byte) ([]registry.RawDocument, error) {
	var raw [][]byte
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	docs := make([]registry.RawDocument, len(raw))
	for i, b := range raw {
		docs[i] = registry.RawDocument(b)
	}
	return docs, nil
}

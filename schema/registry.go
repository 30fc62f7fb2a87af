package schema

import (
	"errors"
	"sync"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/internal/collision"
	"github.com/arloliu/ctfdec/internal/hash"
)

// Fingerprint identifies metadata text. Two traces with identical metadata
// text share a fingerprint and can share one type tree.
func Fingerprint(metadataText []byte) uint64 {
	return hash.Fingerprint(metadataText)
}

// Registry caches type trees by metadata fingerprint for the lifetime of a
// decoding session, so the upstream parser runs once per distinct schema.
// Texts are compared on every hit; a text whose fingerprint collides with a
// cached one is built but never cached.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	traces map[uint64]*Trace
	texts  *collision.Tracker
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		traces: make(map[uint64]*Trace),
		texts:  collision.NewTracker(),
	}
}

// Lookup returns the trace cached for metadataText.
func (r *Registry) Lookup(metadataText []byte) (*Trace, bool) {
	fp := Fingerprint(metadataText)

	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.traces[fp]
	if !ok || !r.texts.Matches(fp, metadataText) {
		return nil, false
	}

	return t, true
}

// GetOrBuild returns the cached trace for metadataText, calling build on a
// miss. Concurrent misses for the same text may call build more than once;
// the first stored result wins.
func (r *Registry) GetOrBuild(metadataText []byte, build func([]byte) (*Trace, error)) (*Trace, error) {
	if t, ok := r.Lookup(metadataText); ok {
		return t, nil
	}

	t, err := build(metadataText)
	if err != nil {
		return nil, err
	}

	fp := Fingerprint(metadataText)

	r.mu.Lock()
	defer r.mu.Unlock()

	known, err := r.texts.Track(fp, metadataText)
	if errors.Is(err, errs.ErrHashCollision) {
		return t, nil
	}
	if existing, ok := r.traces[fp]; ok && known {
		return existing, nil
	}
	r.traces[fp] = t

	return t, nil
}

// Len returns the number of cached traces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.traces)
}

// Collisions returns the number of texts that could not be cached because
// their fingerprint was taken.
func (r *Registry) Collisions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.texts.Collisions()
}

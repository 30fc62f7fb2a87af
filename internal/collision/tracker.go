// Package collision detects fingerprint collisions between cached inputs.
package collision

import (
	"bytes"

	"github.com/arloliu/ctfdec/errs"
)

// Tracker remembers the input behind each fingerprint, so a cache keyed by
// fingerprint can tell a genuine hit from two inputs that hash alike.
//
// Tracker is not safe for concurrent use; read-only calls (Matches, Count,
// Collisions) may run concurrently with each other.
type Tracker struct {
	inputs     map[uint64][]byte // fingerprint → first input seen
	collisions int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{inputs: make(map[uint64][]byte)}
}

// Track records input under hash. It reports whether the same input was
// tracked before. A different input under an already tracked hash is a
// collision: it returns ErrHashCollision and the first input keeps the hash.
func (t *Tracker) Track(hash uint64, input []byte) (bool, error) {
	if existing, ok := t.inputs[hash]; ok {
		if bytes.Equal(existing, input) {
			return true, nil
		}
		t.collisions++

		return false, errs.ErrHashCollision
	}

	t.inputs[hash] = bytes.Clone(input)

	return false, nil
}

// Matches reports whether input is the one tracked under hash.
func (t *Tracker) Matches(hash uint64, input []byte) bool {
	existing, ok := t.inputs[hash]
	return ok && bytes.Equal(existing, input)
}

// Count returns the number of tracked fingerprints.
func (t *Tracker) Count() int {
	return len(t.inputs)
}

// Collisions returns the number of collisions seen by Track.
func (t *Tracker) Collisions() int {
	return t.collisions
}

// Reset forgets all inputs and the collision count.
func (t *Tracker) Reset() {
	clear(t.inputs)
	t.collisions = 0
}

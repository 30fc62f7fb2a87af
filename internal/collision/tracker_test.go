package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/errs"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Zero(t, tracker.Count())
	require.Zero(t, tracker.Collisions())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	known, err := tracker.Track(0x1234567890abcdef, []byte("trace { major = 1; };"))
	require.NoError(t, err)
	require.False(t, known)
	require.Equal(t, 1, tracker.Count())

	known, err = tracker.Track(0x1234567890abcdef, []byte("trace { major = 1; };"))
	require.NoError(t, err)
	require.True(t, known)
	require.Equal(t, 1, tracker.Count())

	known, err = tracker.Track(0xfedcba0987654321, []byte("trace { major = 2; };"))
	require.NoError(t, err)
	require.False(t, known)
	require.Equal(t, 2, tracker.Count())
	require.Zero(t, tracker.Collisions())
}

func TestTracker_Collision(t *testing.T) {
	tracker := NewTracker()

	_, err := tracker.Track(42, []byte("first"))
	require.NoError(t, err)

	known, err := tracker.Track(42, []byte("second"))
	require.ErrorIs(t, err, errs.ErrHashCollision)
	require.False(t, known)
	require.Equal(t, 1, tracker.Collisions())

	// the first input keeps the fingerprint
	require.True(t, tracker.Matches(42, []byte("first")))
	require.False(t, tracker.Matches(42, []byte("second")))
	require.False(t, tracker.Matches(7, []byte("first")))
}

func TestTracker_InputIsCopied(t *testing.T) {
	tracker := NewTracker()

	input := []byte("abc")
	_, err := tracker.Track(1, input)
	require.NoError(t, err)

	input[0] = 'x'
	require.True(t, tracker.Matches(1, []byte("abc")))
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	_, _ = tracker.Track(1, []byte("a"))
	_, _ = tracker.Track(1, []byte("b"))

	tracker.Reset()
	require.Zero(t, tracker.Count())
	require.Zero(t, tracker.Collisions())

	known, err := tracker.Track(1, []byte("b"))
	require.NoError(t, err)
	require.False(t, known)
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

func emptyPayload(t *testing.T) *Struct {
	t.Helper()

	s, err := NewStruct(nil, 0)
	require.NoError(t, err)

	return s
}

func TestNewTrace(t *testing.T) {
	ec := must[*EventClass](t)(NewEventClass(3, "tick", emptyPayload(t), nil))
	sc, err := NewStreamClass(0, WithEventClass(ec))
	require.NoError(t, err)

	tr, err := NewTrace(WithStreamClass(sc))
	require.NoError(t, err)
	require.Equal(t, format.LittleEndian, tr.ByteOrder())
	_, hasUUID := tr.UUID()
	require.False(t, hasUUID)

	got, ok := tr.DefaultStreamClass()
	require.True(t, ok)
	require.Same(t, sc, got)

	gotEC, ok := got.EventClass(3)
	require.True(t, ok)
	require.Equal(t, "tick", gotEC.Name())

	require.Equal(t, DefaultFieldNames(), tr.FieldNames())
}

func TestNewTrace_Invalid(t *testing.T) {
	t.Run("no stream class", func(t *testing.T) {
		_, err := NewTrace()
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("two stream classes need a stream class id field", func(t *testing.T) {
		a := must[*StreamClass](t)(NewStreamClass(0))
		b := must[*StreamClass](t)(NewStreamClass(1))

		_, err := NewTrace(WithStreamClass(a), WithStreamClass(b))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)

		hdr := Must(NewStruct([]Field{{"stream_id", Must(NewInteger(8))}}, 0))
		_, err = NewTrace(WithStreamClass(a), WithStreamClass(b), WithPacketHeader(hdr))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)

		hdr = Must(NewStruct([]Field{{"stream_class_id", Must(NewInteger(8))}}, 0))
		tr, err := NewTrace(WithStreamClass(a), WithStreamClass(b), WithPacketHeader(hdr))
		require.NoError(t, err)
		require.Len(t, tr.StreamClasses(), 2)
		_, ok := tr.DefaultStreamClass()
		require.False(t, ok)
	})

	t.Run("duplicate stream class", func(t *testing.T) {
		a := must[*StreamClass](t)(NewStreamClass(0))
		_, err := NewTrace(WithStreamClass(a), WithStreamClass(a))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("invalid byte order", func(t *testing.T) {
		a := must[*StreamClass](t)(NewStreamClass(0))
		_, err := NewTrace(WithStreamClass(a), WithTraceByteOrder(format.ByteOrderDefault))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("event classes without header", func(t *testing.T) {
		e1 := must[*EventClass](t)(NewEventClass(1, "a", emptyPayload(t), nil))
		e2 := must[*EventClass](t)(NewEventClass(2, "b", emptyPayload(t), nil))
		_, err := NewStreamClass(0, WithEventClass(e1), WithEventClass(e2))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("duplicate event class", func(t *testing.T) {
		e1 := must[*EventClass](t)(NewEventClass(1, "a", emptyPayload(t), nil))
		_, err := NewStreamClass(0, WithEventClass(e1), WithEventClass(e1))
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})

	t.Run("event class without payload", func(t *testing.T) {
		_, err := NewEventClass(1, "a", nil, nil)
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
	})
}

func TestStreamClass_EventClassesSorted(t *testing.T) {
	hdr := Must(NewStruct([]Field{{"event_class_id", Must(NewInteger(8))}}, 0))
	var opts []StreamClassOption
	for _, id := range []uint64{9, 2, 5} {
		opts = append(opts, WithEventClass(must[*EventClass](t)(NewEventClass(id, "", emptyPayload(t), nil))))
	}
	opts = append(opts, WithEventHeader(hdr))

	sc := must[*StreamClass](t)(NewStreamClass(0, opts...))

	var ids []uint64
	for _, ec := range sc.EventClasses() {
		ids = append(ids, ec.ID())
	}
	require.Equal(t, []uint64{2, 5, 9}, ids)
}

func TestRegistry(t *testing.T) {
	text := []byte("/* CTF 1.8 */ trace { major = 1; };")

	calls := 0
	build := func([]byte) (*Trace, error) {
		calls++
		sc, err := NewStreamClass(0)
		if err != nil {
			return nil, err
		}

		return NewTrace(WithStreamClass(sc))
	}

	r := NewRegistry()
	_, ok := r.Lookup(text)
	require.False(t, ok)

	t1, err := r.GetOrBuild(text, build)
	require.NoError(t, err)
	t2, err := r.GetOrBuild(text, build)
	require.NoError(t, err)

	require.Same(t, t1, t2)
	require.Equal(t, 1, calls)
	require.Equal(t, 1, r.Len())

	require.NotEqual(t, Fingerprint(text), Fingerprint([]byte("other")))

	t.Run("fingerprint collision is not cached", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.texts.Track(Fingerprint(text), []byte("impostor"))
		require.NoError(t, err)

		calls = 0
		t1, err := r.GetOrBuild(text, build)
		require.NoError(t, err)
		t2, err := r.GetOrBuild(text, build)
		require.NoError(t, err)

		require.NotSame(t, t1, t2)
		require.Equal(t, 2, calls)
		require.Equal(t, 2, r.Collisions())
		require.Zero(t, r.Len())

		_, ok := r.Lookup(text)
		require.False(t, ok)
	})

	t.Run("build error", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.GetOrBuild(text, func([]byte) (*Trace, error) {
			return nil, errs.ErrInvalidSchema
		})
		require.ErrorIs(t, err, errs.ErrInvalidSchema)
		require.Zero(t, r.Len())
	})
}

// must fails the test on a constructor error.
func must[T any](t *testing.T) func(T, error) T {
	return func(v T, err error) T {
		t.Helper()
		require.NoError(t, err)

		return v
	}
}

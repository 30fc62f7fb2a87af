package decode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/bitio"
	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/value"
)

var (
	u8  = schema.Must(schema.NewInteger(8))
	s8  = schema.Must(schema.NewInteger(8, schema.WithSigned()))
	u16 = schema.Must(schema.NewInteger(16))
)

func newDecoder(t *testing.T, opts ...Option) *Decoder {
	t.Helper()

	d, err := NewDecoder(opts...)
	require.NoError(t, err)

	return d
}

func decode(t *testing.T, d *Decoder, n schema.Node, data []byte) (value.Value, error) {
	t.Helper()

	return d.Decode(bitio.NewCursor(data), n, NewScope())
}

func structOf(t *testing.T, fields ...schema.Field) *schema.Struct {
	t.Helper()

	s, err := schema.NewStruct(fields, 0)
	require.NoError(t, err)

	return s
}

func TestDecoder_Integers(t *testing.T) {
	d := newDecoder(t)

	t.Run("u32 in both byte orders", func(t *testing.T) {
		le := schema.Must(schema.NewInteger(32, schema.WithByteOrder(format.LittleEndian)))
		be := schema.Must(schema.NewInteger(32, schema.WithByteOrder(format.BigEndian)))

		v, err := decode(t, d, le, []byte{0xef, 0xbe, 0xad, 0xde})
		require.NoError(t, err)
		require.Equal(t, uint64(0xdeadbeef), v.(*value.Integer).Uint64())

		v, err = decode(t, d, be, []byte{0xde, 0xad, 0xbe, 0xef})
		require.NoError(t, err)
		require.Equal(t, uint64(0xdeadbeef), v.(*value.Integer).Uint64())
	})

	t.Run("default byte order follows decoder", func(t *testing.T) {
		bd := newDecoder(t, WithDefaultByteOrder(format.BigEndian))
		v, err := decode(t, bd, u16, []byte{0x12, 0x34})
		require.NoError(t, err)
		require.Equal(t, uint64(0x1234), v.(*value.Integer).Uint64())

		v, err = decode(t, d, u16, []byte{0x12, 0x34})
		require.NoError(t, err)
		require.Equal(t, uint64(0x3412), v.(*value.Integer).Uint64())
	})

	t.Run("bit packed fields", func(t *testing.T) {
		u3 := schema.Must(schema.NewInteger(3))
		s5 := schema.Must(schema.NewInteger(5, schema.WithSigned()))
		s := structOf(t, schema.Field{Name: "a", Type: u3}, schema.Field{Name: "b", Type: s5})

		// a = 0b101, b = 0b11110 (-2)
		v, err := decode(t, d, s, []byte{0xf5})
		require.NoError(t, err)

		a, _ := v.(*value.Struct).Field("a")
		b, _ := v.(*value.Struct).Field("b")
		require.Equal(t, uint64(5), a.(*value.Integer).Uint64())
		require.Equal(t, int64(-2), b.(*value.Integer).Int64())
	})

	t.Run("alignment skips padding", func(t *testing.T) {
		u1 := schema.Must(schema.NewInteger(1))
		s := structOf(t, schema.Field{Name: "flag", Type: u1}, schema.Field{Name: "n", Type: u16})

		v, err := decode(t, d, s, []byte{0xff, 0x01, 0x02})
		require.NoError(t, err)
		n, _ := v.(*value.Struct).Uint("n")
		require.Equal(t, uint64(0x0201), n)
	})

	t.Run("leb128", func(t *testing.T) {
		uleb := schema.Must(schema.NewInteger(0, schema.WithLEB128()))
		sleb := schema.Must(schema.NewInteger(0, schema.WithLEB128(), schema.WithSigned()))

		v, err := decode(t, d, uleb, []byte{0xb4, 0xc7, 0x72})
		require.NoError(t, err)
		require.Equal(t, uint64(1876916), v.(*value.Integer).Uint64())

		v, err = decode(t, d, sleb, []byte{0xb4, 0xc7, 0x72})
		require.NoError(t, err)
		require.Equal(t, int64(-220236), v.(*value.Integer).Int64())

		v, err = decode(t, d, sleb, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f})
		require.NoError(t, err)
		require.Equal(t, int64(math.MinInt64), v.(*value.Integer).Int64())
	})

	t.Run("display base", func(t *testing.T) {
		hex := schema.Must(schema.NewInteger(8, schema.WithBase(format.BaseHexadecimal)))
		v, err := decode(t, d, hex, []byte{0x2a})
		require.NoError(t, err)
		require.Equal(t, "0x2a", v.String())
	})

	t.Run("out of bounds", func(t *testing.T) {
		_, err := decode(t, d, u16, []byte{0x01})
		require.ErrorIs(t, err, errs.ErrOutOfBounds)

		var de *errs.DecodeError
		require.ErrorAs(t, err, &de)
		require.Equal(t, int64(0), de.Offset)
	})
}

func TestDecoder_Floats(t *testing.T) {
	d := newDecoder(t)

	f32 := schema.Must(schema.NewFloat32())
	f64 := schema.Must(schema.NewFloat64(schema.WithFloatByteOrder(format.BigEndian)))

	v, err := decode(t, d, f32, []byte{0x00, 0x00, 0x20, 0x40})
	require.NoError(t, err)
	require.InDelta(t, 2.5, v.(*value.Float).Float64(), 0)
	require.Equal(t, 32, v.(*value.Float).Bits())

	v, err = decode(t, d, f64, []byte{0xc0, 0x09, 0x21, 0xfb, 0x54, 0x44, 0x2d, 0x18})
	require.NoError(t, err)
	require.InDelta(t, -math.Pi, v.(*value.Float).Float64(), 0)

	half := schema.Must(schema.NewFloat(5, 11))
	_, err = decode(t, d, half, []byte{0x00, 0x3c})
	require.ErrorIs(t, err, errs.ErrUnsupportedFloatWidth)
}

func TestDecoder_Strings(t *testing.T) {
	d := newDecoder(t)

	t.Run("static buffer stops at NUL", func(t *testing.T) {
		s := schema.Must(schema.NewStaticString(6))
		v, err := decode(t, d, s, []byte("abc\x00\x00\x00"))
		require.NoError(t, err)
		require.Equal(t, "abc", v.(*value.String).Text())
	})

	t.Run("static buffer without NUL", func(t *testing.T) {
		s := schema.Must(schema.NewStaticString(3))
		v, err := decode(t, d, s, []byte("xyz"))
		require.NoError(t, err)
		require.Equal(t, "xyz", v.(*value.String).Text())
	})

	t.Run("zero length buffer", func(t *testing.T) {
		s := schema.Must(schema.NewStaticString(0))
		v, err := decode(t, d, s, nil)
		require.NoError(t, err)
		require.Empty(t, v.(*value.String).Text())
	})

	t.Run("prefixed", func(t *testing.T) {
		s := schema.Must(schema.NewPrefixedString(u16))
		v, err := decode(t, d, s, []byte{0x03, 0x00, 'a', 0x00, 'b'})
		require.NoError(t, err)
		require.Equal(t, []byte{'a', 0, 'b'}, v.(*value.String).Bytes())
	})

	t.Run("prefixed too long", func(t *testing.T) {
		s := schema.Must(schema.NewPrefixedString(u16))
		_, err := decode(t, d, s, []byte{0xff, 0xff, 'a'})
		require.ErrorIs(t, err, errs.ErrOutOfBounds)
	})

	t.Run("null terminated", func(t *testing.T) {
		s := structOf(t,
			schema.Field{Name: "a", Type: schema.NewNullTerminatedString()},
			schema.Field{Name: "b", Type: u8},
		)
		v, err := decode(t, d, s, []byte{'h', 'i', 0, 7})
		require.NoError(t, err)
		require.Equal(t, `{a = "hi", b = 7}`, v.String())
	})

	t.Run("unterminated", func(t *testing.T) {
		_, err := decode(t, d, schema.NewNullTerminatedString(), []byte("abc"))
		require.ErrorIs(t, err, errs.ErrOutOfBounds)
	})

	t.Run("values do not alias input", func(t *testing.T) {
		data := []byte("abc")
		s := schema.Must(schema.NewStaticString(3))
		v, err := decode(t, d, s, data)
		require.NoError(t, err)
		data[0] = 'z'
		require.Equal(t, "abc", v.(*value.String).Text())
	})
}

func TestDecoder_NestedDynamicArrays(t *testing.T) {
	d := newDecoder(t)

	row := structOf(t,
		schema.Field{Name: "len", Type: u8},
		schema.Field{Name: "items", Type: schema.Must(schema.NewDynamicArray(u8, schema.Relative("len")))},
	)
	outer := schema.Must(schema.NewArray(row, 3))

	v, err := decode(t, d, outer, []byte{0x00, 0x01, 0x00, 0x02, 0x00, 0x01})
	require.NoError(t, err)

	arr := v.(*value.Array)
	require.Equal(t, 3, arr.Len())

	var got [][]uint64
	for _, r := range arr.Values() {
		items, ok := value.Lookup(r, "items")
		require.True(t, ok)

		row := []uint64{}
		for _, e := range items.(*value.Array).Values() {
			row = append(row, e.(*value.Integer).Uint64())
		}
		got = append(got, row)
	}
	require.Equal(t, [][]uint64{{}, {0}, {0, 1}}, got)
}

func TestDecoder_DynamicArrayLengthFromOuterScope(t *testing.T) {
	d := newDecoder(t)

	inner := structOf(t, schema.Field{Name: "vals", Type: schema.Must(schema.NewDynamicArray(u8, schema.Relative("n")))})
	outer := structOf(t, schema.Field{Name: "n", Type: u8}, schema.Field{Name: "inner", Type: inner})

	v, err := decode(t, d, outer, []byte{0x02, 0x0a, 0x0b})
	require.NoError(t, err)
	require.Equal(t, "{n = 2, inner = {vals = [10, 11]}}", v.String())
}

func TestDecoder_Variant(t *testing.T) {
	d := newDecoder(t)

	v := schema.Must(schema.NewVariant(schema.Relative("sel"), []schema.VariantCase{
		{Tag: 1, Name: "u", Type: u16},
		{Tag: 5, Name: "s", Type: s8},
	}))
	s := structOf(t, schema.Field{Name: "sel", Type: u8}, schema.Field{Name: "v", Type: v})

	t.Run("selected case", func(t *testing.T) {
		out, err := decode(t, d, s, []byte{0x05, 0xfb})
		require.NoError(t, err)

		got, ok := out.(*value.Struct).Field("v")
		require.True(t, ok)
		vv := got.(*value.Variant)
		require.Equal(t, int64(5), vv.Tag())
		require.Equal(t, "s", vv.Name())
		require.Equal(t, int64(-5), vv.Value().(*value.Integer).Int64())
	})

	t.Run("unmatched selector", func(t *testing.T) {
		_, err := decode(t, d, s, []byte{0x02, 0xfb})
		require.ErrorIs(t, err, errs.ErrUnmatchedVariantSelector)

		var de *errs.DecodeError
		require.ErrorAs(t, err, &de)
		require.Equal(t, "v", de.Path)
		require.Equal(t, int64(8), de.Offset)
	})

	t.Run("selector must be an integer", func(t *testing.T) {
		bad := structOf(t,
			schema.Field{Name: "sel", Type: schema.Must(schema.NewStaticString(1))},
			schema.Field{Name: "v", Type: v},
		)
		_, err := decode(t, d, bad, []byte{0x05, 0xfb})
		require.ErrorIs(t, err, errs.ErrUnresolvedFieldLocation)
	})

	t.Run("unsigned selector above int64 range", func(t *testing.T) {
		neg := schema.Must(schema.NewVariant(schema.Relative("sel"), []schema.VariantCase{
			{Tag: -1, Name: "minus_one", Type: u8},
		}))
		u64 := schema.Must(schema.NewInteger(64))
		s := structOf(t, schema.Field{Name: "sel", Type: u64}, schema.Field{Name: "v", Type: neg})

		data := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}
		_, err := decode(t, d, s, data)
		require.ErrorIs(t, err, errs.ErrUnmatchedVariantSelector)

		signed := structOf(t,
			schema.Field{Name: "sel", Type: schema.Must(schema.NewInteger(64, schema.WithSigned()))},
			schema.Field{Name: "v", Type: neg},
		)
		out, err := decode(t, d, signed, data)
		require.NoError(t, err)
		got, ok := out.(*value.Struct).Field("v")
		require.True(t, ok)
		require.Equal(t, "minus_one", got.(*value.Variant).Name())
	})
}

func TestDecoder_UnresolvedLocation(t *testing.T) {
	d := newDecoder(t)

	arr := schema.Must(schema.NewDynamicArray(u8, schema.Relative("count")))
	s := structOf(t, schema.Field{Name: "items", Type: arr}, schema.Field{Name: "count", Type: u8})

	_, err := decode(t, d, s, []byte{0x01, 0x01})
	require.ErrorIs(t, err, errs.ErrUnresolvedFieldLocation)
}

func TestDecoder_Limits(t *testing.T) {
	t.Run("max elements", func(t *testing.T) {
		d := newDecoder(t, WithMaxElements(2))
		arr := schema.Must(schema.NewArray(u8, 3))
		_, err := decode(t, d, arr, []byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrArrayTooLong)
	})

	t.Run("max depth", func(t *testing.T) {
		d := newDecoder(t, WithMaxDepth(3))

		var n schema.Node = u8
		for range 5 {
			n = structOf(t, schema.Field{Name: "x", Type: n})
		}
		_, err := decode(t, d, n, []byte{1})
		require.ErrorIs(t, err, errs.ErrMaxDepthExceeded)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewDecoder(WithMaxDepth(0))
		require.Error(t, err)
		_, err = NewDecoder(WithMaxElements(-1))
		require.Error(t, err)
		_, err = NewDecoder(WithDefaultByteOrder(format.ByteOrderDefault))
		require.Error(t, err)
	})
}

func TestDecoder_ErrorPath(t *testing.T) {
	d := newDecoder(t)

	item := structOf(t, schema.Field{Name: "name", Type: schema.Must(schema.NewStaticString(4))})
	payload := structOf(t,
		schema.Field{Name: "n", Type: u8},
		schema.Field{Name: "items", Type: schema.Must(schema.NewDynamicArray(item, schema.Relative("n")))},
	)

	scope := NewScope()
	_, err := d.DecodeRoot(bitio.NewCursor([]byte{0x02, 'a', 'b', 'c', 'd', 'e'}), schema.RootEventPayload, payload, scope)
	require.ErrorIs(t, err, errs.ErrOutOfBounds)

	var de *errs.DecodeError
	require.ErrorAs(t, err, &de)
	require.Equal(t, "event.fields.items[1].name", de.Path)
	require.Equal(t, int64(40), de.Offset)
	require.Contains(t, err.Error(), "byte 5")
}

func TestDecodeRoot_AbsoluteLocations(t *testing.T) {
	d := newDecoder(t)
	scope := NewScope()

	ctx := structOf(t, schema.Field{Name: "count", Type: u8})
	_, err := d.DecodeRoot(bitio.NewCursor([]byte{0x02}), schema.RootPacketContext, ctx, scope)
	require.NoError(t, err)

	payload := structOf(t,
		schema.Field{Name: "items", Type: schema.Must(schema.NewDynamicArray(u8,
			schema.Absolute(schema.RootPacketContext, "count")))},
		schema.Field{Name: "again", Type: schema.Must(schema.NewDynamicArray(u8,
			schema.Absolute(schema.RootEventPayload, "items")))},
	)

	// an absolute location into the root being decoded resolves too, but
	// "items" is an array, not a length
	_, err = d.DecodeRoot(bitio.NewCursor([]byte{0x07, 0x08, 0x01}), schema.RootEventPayload, payload, scope)
	require.ErrorIs(t, err, errs.ErrUnresolvedFieldLocation)

	payload = structOf(t,
		schema.Field{Name: "n", Type: u8},
		schema.Field{Name: "items", Type: schema.Must(schema.NewDynamicArray(u8,
			schema.Absolute(schema.RootEventPayload, "n")))},
	)
	v, err := d.DecodeRoot(bitio.NewCursor([]byte{0x01, 0x09}), schema.RootEventPayload, payload, scope)
	require.NoError(t, err)
	require.Equal(t, "{n = 1, items = [9]}", v.String())
	require.Same(t, v, scope.Root(schema.RootEventPayload))

	scope.ResetEvent()
	require.Nil(t, scope.Root(schema.RootEventPayload))
	require.NotNil(t, scope.Root(schema.RootPacketContext))

	scope.Reset()
	require.Nil(t, scope.Root(schema.RootPacketContext))
}

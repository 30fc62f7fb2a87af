package packet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ctfdec/schema"
)

// buf assembles little-endian fixtures.
type buf struct {
	b []byte
}

func (w *buf) u8(v ...byte) *buf {
	w.b = append(w.b, v...)
	return w
}

func (w *buf) u16(v uint16) *buf {
	w.b = binary.LittleEndian.AppendUint16(w.b, v)
	return w
}

func (w *buf) u32(v uint32) *buf {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
	return w
}

func (w *buf) u64(v uint64) *buf {
	w.b = binary.LittleEndian.AppendUint64(w.b, v)
	return w
}

func (w *buf) str(s string) *buf {
	w.b = append(w.b, s...)
	return w
}

func (w *buf) fill(n int, v byte) *buf {
	for range n {
		w.b = append(w.b, v)
	}
	return w
}

func (w *buf) bytes() []byte {
	return w.b
}

func integer(size int, opts ...schema.IntegerOption) *schema.Integer {
	return schema.Must(schema.NewInteger(size, opts...))
}

func structure(t *testing.T, fields ...schema.Field) *schema.Struct {
	t.Helper()

	s, err := schema.NewStruct(fields, 0)
	require.NoError(t, err)

	return s
}

func field(name string, n schema.Node) schema.Field {
	return schema.Field{Name: name, Type: n}
}

func eventClass(t *testing.T, id uint64, name string, payload *schema.Struct) *schema.EventClass {
	t.Helper()

	ec, err := schema.NewEventClass(id, name, payload, nil)
	require.NoError(t, err)

	return ec
}

func newPacketDecoder(t *testing.T, tr *schema.Trace) *Decoder {
	t.Helper()

	d, err := NewDecoder(tr)
	require.NoError(t, err)

	return d
}

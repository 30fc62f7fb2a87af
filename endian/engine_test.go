package endian

import (
	"encoding/binary"
	"testing"

	"github.com/arloliu/ctfdec/format"
	"github.com/stretchr/testify/require"
)

func TestEngine(t *testing.T) {
	require.Equal(t, GetLittleEndianEngine(), Engine(format.LittleEndian))
	require.Equal(t, GetBigEndianEngine(), Engine(format.BigEndian))
	require.Equal(t, GetLittleEndianEngine(), Engine(format.ByteOrderDefault))
}

func TestEngine_Uint32SameValue(t *testing.T) {
	le := []byte{0xef, 0xbe, 0xad, 0xde}
	be := []byte{0xde, 0xad, 0xbe, 0xef}

	require.Equal(t, uint32(0xdeadbeef), Engine(format.LittleEndian).Uint32(le))
	require.Equal(t, uint32(0xdeadbeef), Engine(format.BigEndian).Uint32(be))
}

func TestDetectMagic32(t *testing.T) {
	const magic = 0x75d11d57

	tests := []struct {
		name  string
		data  []byte
		order format.ByteOrder
		ok    bool
	}{
		{"little endian", binary.LittleEndian.AppendUint32(nil, magic), format.LittleEndian, true},
		{"big endian", binary.BigEndian.AppendUint32(nil, magic), format.BigEndian, true},
		{"trailing bytes ignored", append(binary.BigEndian.AppendUint32(nil, magic), 1, 2, 3), format.BigEndian, true},
		{"no match", []byte{0x01, 0x02, 0x03, 0x04}, format.ByteOrderDefault, false},
		{"too short", []byte{0x57, 0x1d, 0xd1}, format.ByteOrderDefault, false},
		{"empty", nil, format.ByteOrderDefault, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, ok := DetectMagic32(tt.data, magic)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.order, order)
		})
	}
}

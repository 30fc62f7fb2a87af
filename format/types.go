// Package format defines the enumerations shared by the schema, the decoder
// and the packet framing layer.
package format

type (
	ByteOrder       uint8
	IntEncoding     uint8
	StringEncoding  uint8
	Kind            uint8
	DisplayBase     uint8
	CompressionType uint8
)

const (
	// ByteOrderDefault defers to the trace's declared byte order.
	ByteOrderDefault ByteOrder = 0x0
	LittleEndian     ByteOrder = 0x1 // LittleEndian stores the least significant byte (and bit) first.
	BigEndian        ByteOrder = 0x2 // BigEndian stores the most significant byte (and bit) first.
)

const (
	IntFixed  IntEncoding = 0x0 // IntFixed is a bit-packed integer of a declared width.
	IntLEB128 IntEncoding = 0x1 // IntLEB128 is an unsigned or signed LEB128 varint.
)

const (
	StringStatic         StringEncoding = 0x1 // StringStatic is a fixed N-byte buffer, NUL bounded.
	StringPrefixed       StringEncoding = 0x2 // StringPrefixed is a length integer followed by raw bytes.
	StringNullTerminated StringEncoding = 0x3 // StringNullTerminated is read up to and including a NUL byte.
)

const (
	KindInteger Kind = iota + 1
	KindFloat
	KindString
	KindArray
	KindStruct
	KindVariant
)

const (
	BaseDecimal     DisplayBase = 10
	BaseHexadecimal DisplayBase = 16
	BaseOctal       DisplayBase = 8
	BaseBinary      DisplayBase = 2
)

// Compression types for archived stream files. Packet-level compression
// schemes inside a trace are not supported and must be zero.
const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents an uncompressed stream file.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents a Zstandard archived stream file.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents an S2 block archived stream file.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents an LZ4 block archived stream file.
)

func (o ByteOrder) String() string {
	switch o {
	case ByteOrderDefault:
		return "default"
	case LittleEndian:
		return "le"
	case BigEndian:
		return "be"
	default:
		return "unknown"
	}
}

// Resolve returns o, or fallback when o is ByteOrderDefault.
func (o ByteOrder) Resolve(fallback ByteOrder) ByteOrder {
	if o == ByteOrderDefault {
		return fallback
	}

	return o
}

func (e IntEncoding) String() string {
	switch e {
	case IntFixed:
		return "fixed"
	case IntLEB128:
		return "leb128"
	default:
		return "unknown"
	}
}

func (e StringEncoding) String() string {
	switch e {
	case StringStatic:
		return "static"
	case StringPrefixed:
		return "prefixed"
	case StringNullTerminated:
		return "null-terminated"
	default:
		return "unknown"
	}
}

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindStruct:
		return "struct"
	case KindVariant:
		return "variant"
	default:
		return "unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

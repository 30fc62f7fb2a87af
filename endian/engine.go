// Package endian provides byte order engines for decoding trace data.
//
// Trace data carries its own byte order, either declared by the schema or
// discovered by trial-decoding a magic number. The host byte order is never
// consulted.
//
// # Basic Usage
//
//	engine := endian.Engine(format.BigEndian)
//	v := engine.Uint32(buf[0:4])
//
// Self-describing headers detect their order with a two-way trial:
//
//	order, ok := endian.DetectMagic32(buf, 0x75d11d57)
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"

	"github.com/arloliu/ctfdec/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Engine returns the engine for order. ByteOrderDefault and unknown values
// map to little-endian; callers resolve defaults against the trace first.
func Engine(order format.ByteOrder) EndianEngine {
	if order == format.BigEndian {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}

// DetectMagic32 tests the first four bytes of b against magic in both byte
// orders and returns the order that matches exactly.
//
// Returns:
//   - format.ByteOrder: LittleEndian or BigEndian on success
//   - bool: false if b is shorter than 4 bytes or neither order matches
func DetectMagic32(b []byte, magic uint32) (format.ByteOrder, bool) {
	if len(b) < 4 {
		return format.ByteOrderDefault, false
	}

	if binary.LittleEndian.Uint32(b) == magic {
		return format.LittleEndian, true
	}

	if binary.BigEndian.Uint32(b) == magic {
		return format.BigEndian, true
	}

	return format.ByteOrderDefault, false
}

package bitio

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// MaxLEB128Bytes is the longest LEB128 encoding of a 64-bit value.
const MaxLEB128Bytes = 10

// ReadULEB128 decodes an unsigned LEB128 value. Each byte carries 7 payload
// bits, least significant group first, with the high bit as continuation.
func (c *Cursor) ReadULEB128() (uint64, error) {
	v, _, _, err := c.readLEB128(false)
	return v, err
}

// ReadSLEB128 decodes a signed LEB128 value. The result is sign-extended from
// bit 6 of the final group.
//
// The value is accumulated in an unsigned register and reinterpreted as two's
// complement, so the 10-byte encoding of math.MinInt64 decodes exactly.
func (c *Cursor) ReadSLEB128() (int64, error) {
	v, shift, last, err := c.readLEB128(true)
	if err != nil {
		return 0, err
	}

	if shift < 64 && last&0x40 != 0 {
		v |= ^uint64(0) << shift
	}

	return int64(v), nil //nolint:gosec
}

// readLEB128 accumulates payload groups. The tenth byte holds only bit 63,
// so its remaining payload bits must be zero (unsigned) or a sign extension
// of bit 63 (signed).
func (c *Cursor) readLEB128(signed bool) (uint64, uint, byte, error) {
	start := c.pos

	var v uint64
	var shift uint
	for i := range MaxLEB128Bytes {
		b, err := c.ReadBits(8, format.LittleEndian)
		if err != nil {
			c.pos = start
			return 0, 0, 0, err
		}

		if shift < 64 {
			v |= (b & 0x7f) << shift
		}
		shift += 7

		if b&0x80 == 0 {
			if i == MaxLEB128Bytes-1 && !lastGroupFits(byte(b), signed) {
				c.pos = start
				return 0, 0, 0, fmt.Errorf("%w: value overflows 64 bits at bit %d",
					errs.ErrMalformedVarint, start)
			}

			return v, shift, byte(b), nil
		}
	}

	c.pos = start

	return 0, 0, 0, fmt.Errorf("%w: no terminating byte within %d bytes at bit %d",
		errs.ErrMalformedVarint, MaxLEB128Bytes, start)
}

func lastGroupFits(b byte, signed bool) bool {
	if signed {
		return b == 0x00 || b == 0x7f
	}

	return b <= 0x01
}

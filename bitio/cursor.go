package bitio

import (
	"fmt"

	"github.com/arloliu/ctfdec/endian"
	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// Cursor reads bit fields sequentially from a byte slice.
type Cursor struct {
	data  []byte
	pos   int64 // current position in bits
	limit int64 // readable bits, never beyond len(data)*8
}

// NewCursor creates a cursor positioned at bit 0 of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{
		data:  data,
		limit: int64(len(data)) * 8,
	}
}

// Pos returns the current position in bits.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Len returns the number of readable bits.
func (c *Cursor) Len() int64 {
	return c.limit
}

// Remaining returns the number of bits left before the limit.
func (c *Cursor) Remaining() int64 {
	return c.limit - c.pos
}

// Limit restricts the readable range to the first bits of the buffer.
// The limit can only shrink.
func (c *Cursor) Limit(bits int64) error {
	if bits < 0 || bits > c.limit {
		return fmt.Errorf("%w: limit %d bits exceeds %d available", errs.ErrOutOfBounds, bits, c.limit)
	}
	c.limit = bits

	return nil
}

// Seek moves the cursor to an absolute bit position within the limit.
func (c *Cursor) Seek(pos int64) error {
	if pos < 0 || pos > c.limit {
		return fmt.Errorf("%w: seek to bit %d, limit %d", errs.ErrOutOfBounds, pos, c.limit)
	}
	c.pos = pos

	return nil
}

// AlignTo skips forward to the next multiple of align bits. Padding bits are
// not inspected. An alignment of 0 or 1 is a no-op.
func (c *Cursor) AlignTo(align int64) error {
	if align <= 1 {
		return nil
	}

	rem := c.pos % align
	if rem == 0 {
		return nil
	}

	next := c.pos + align - rem
	if next > c.limit {
		return fmt.Errorf("%w: align to %d needs %d bits, %d remain",
			errs.ErrOutOfBounds, align, next-c.pos, c.Remaining())
	}
	c.pos = next

	return nil
}

func (c *Cursor) ensure(n int64) error {
	if n > c.Remaining() {
		return fmt.Errorf("%w: need %d bits at bit %d, %d remain", errs.ErrOutOfBounds, n, c.pos, c.Remaining())
	}

	return nil
}

// ReadBits extracts an n-bit (1 <= n <= 64) unsigned value in the given
// byte order and advances the cursor.
func (c *Cursor) ReadBits(n int, order format.ByteOrder) (uint64, error) {
	if n < 0 || n > 64 {
		return 0, fmt.Errorf("%w: invalid bit width %d", errs.ErrOutOfBounds, n)
	}
	if n == 0 {
		return 0, nil
	}
	if err := c.ensure(int64(n)); err != nil {
		return 0, err
	}

	var v uint64
	if c.pos%8 == 0 && n%8 == 0 {
		v = c.readAligned(n, order)
	} else if order == format.BigEndian {
		v = c.readBE(n)
	} else {
		v = c.readLE(n)
	}
	c.pos += int64(n)

	return v, nil
}

// ReadSignedBits reads an n-bit two's complement value and sign-extends it
// to 64 bits.
func (c *Cursor) ReadSignedBits(n int, order format.ByteOrder) (int64, error) {
	v, err := c.ReadBits(n, order)
	if err != nil {
		return 0, err
	}

	return SignExtend(v, n), nil
}

// SignExtend interprets the low n bits of v as a two's complement value.
func SignExtend(v uint64, n int) int64 {
	if n <= 0 || n >= 64 {
		return int64(v) //nolint:gosec
	}
	if v&(uint64(1)<<(n-1)) != 0 {
		v |= ^uint64(0) << n
	}

	return int64(v) //nolint:gosec
}

// ReadBytes returns the next n bytes. The cursor must be byte aligned.
// The returned slice aliases the underlying buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative byte count %d", errs.ErrOutOfBounds, n)
	}
	if c.pos%8 != 0 {
		if err := c.AlignTo(8); err != nil {
			return nil, err
		}
	}
	if err := c.ensure(int64(n) * 8); err != nil {
		return nil, err
	}

	start := c.pos / 8
	c.pos += int64(n) * 8

	return c.data[start : start+int64(n)], nil
}

// PeekByteAt returns the byte at the given byte offset from the cursor
// without advancing. The cursor must be byte aligned.
func (c *Cursor) PeekByteAt(off int) (byte, bool) {
	if c.pos%8 != 0 {
		return 0, false
	}
	bit := c.pos + int64(off)*8
	if off < 0 || bit+8 > c.limit {
		return 0, false
	}

	return c.data[bit/8], true
}

func (c *Cursor) readAligned(n int, order format.ByteOrder) uint64 {
	start := c.pos / 8
	b := c.data[start : start+int64(n/8)]
	engine := endian.Engine(order)

	switch n {
	case 8:
		return uint64(b[0])
	case 16:
		return uint64(engine.Uint16(b))
	case 32:
		return uint64(engine.Uint32(b))
	case 64:
		return engine.Uint64(b)
	}

	// 24, 40, 48, 56 bits
	var v uint64
	if order == format.BigEndian {
		for _, x := range b {
			v = v<<8 | uint64(x)
		}
	} else {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
	}

	return v
}

// readLE collects bits least significant first.
func (c *Cursor) readLE(n int) uint64 {
	var v uint64
	pos := c.pos
	got := 0
	for got < n {
		b := uint64(c.data[pos>>3])
		off := int(pos & 7)
		take := min(8-off, n-got)
		chunk := (b >> off) & (uint64(1)<<take - 1)
		v |= chunk << got
		got += take
		pos += int64(take)
	}

	return v
}

// readBE collects bits most significant first.
func (c *Cursor) readBE(n int) uint64 {
	var v uint64
	pos := c.pos
	got := 0
	for got < n {
		b := uint64(c.data[pos>>3])
		off := int(pos & 7)
		take := min(8-off, n-got)
		chunk := (b >> (8 - off - take)) & (uint64(1)<<take - 1)
		v = v<<take | chunk
		got += take
		pos += int64(take)
	}

	return v
}

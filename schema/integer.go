package schema

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/internal/options"
)

// Integer describes a fixed-width or LEB128 integer.
type Integer struct {
	size     int
	order    format.ByteOrder
	signed   bool
	encoding format.IntEncoding
	align    int64
	base     format.DisplayBase
}

// IntegerOption configures an Integer.
type IntegerOption = options.Option[*Integer]

var _ Node = (*Integer)(nil)

// NewInteger creates an integer of size bits.
//
// Fixed integers accept 1 to 64 bits. LEB128 integers ignore size for
// decoding but keep it as the declared value range (0 means 64).
// Default alignment is 8 when size is a multiple of 8 and 1 otherwise,
// and always 8 for LEB128.
func NewInteger(size int, opts ...IntegerOption) (*Integer, error) {
	i := &Integer{
		size: size,
		base: format.BaseDecimal,
	}

	if err := options.Apply(i, opts...); err != nil {
		return nil, fmt.Errorf("%w: integer: %w", errs.ErrInvalidSchema, err)
	}

	if i.encoding == format.IntLEB128 {
		if i.size == 0 {
			i.size = 64
		}
		if i.align == 0 {
			i.align = 8
		}
	}

	if i.size < 1 || i.size > 64 {
		return nil, fmt.Errorf("%w: integer size %d out of range 1..64", errs.ErrInvalidSchema, i.size)
	}

	if i.align == 0 {
		i.align = 1
		if i.size%8 == 0 {
			i.align = 8
		}
	}

	return i, nil
}

// WithSigned marks the integer as two's complement signed.
func WithSigned() IntegerOption {
	return options.NoError(func(i *Integer) {
		i.signed = true
	})
}

// WithByteOrder sets the integer's byte order.
func WithByteOrder(order format.ByteOrder) IntegerOption {
	return options.New(func(i *Integer) error {
		switch order {
		case format.ByteOrderDefault, format.LittleEndian, format.BigEndian:
			i.order = order
			return nil
		default:
			return fmt.Errorf("invalid byte order: %v", order)
		}
	})
}

// WithAlign sets the alignment in bits; it must be a power of two.
func WithAlign(align int64) IntegerOption {
	return options.New(func(i *Integer) error {
		if !validAlign(align) {
			return fmt.Errorf("alignment %d is not a power of two", align)
		}
		i.align = align

		return nil
	})
}

// WithLEB128 selects LEB128 varint encoding.
func WithLEB128() IntegerOption {
	return options.NoError(func(i *Integer) {
		i.encoding = format.IntLEB128
	})
}

// WithBase sets the preferred display base.
func WithBase(base format.DisplayBase) IntegerOption {
	return options.New(func(i *Integer) error {
		switch base {
		case format.BaseBinary, format.BaseOctal, format.BaseDecimal, format.BaseHexadecimal:
			i.base = base
			return nil
		default:
			return fmt.Errorf("invalid display base: %d", base)
		}
	})
}

func (i *Integer) Kind() format.Kind            { return format.KindInteger }
func (i *Integer) Alignment() int64             { return i.align }
func (i *Integer) Size() int                    { return i.size }
func (i *Integer) ByteOrder() format.ByteOrder  { return i.order }
func (i *Integer) Signed() bool                 { return i.signed }
func (i *Integer) Encoding() format.IntEncoding { return i.encoding }
func (i *Integer) Base() format.DisplayBase     { return i.base }

func (i *Integer) String() string {
	prefix := "u"
	if i.signed {
		prefix = "s"
	}
	if i.encoding == format.IntLEB128 {
		return prefix + "leb128"
	}

	return fmt.Sprintf("%s%d", prefix, i.size)
}

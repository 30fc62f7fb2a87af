package schema

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/internal/options"
)

// Float describes an IEEE-754 floating point number. The mantissa width
// includes the implicit leading bit, so binary32 is (8, 24) and binary64 is
// (11, 53).
type Float struct {
	expDig  int
	mantDig int
	order   format.ByteOrder
	align   int64
}

// FloatOption configures a Float.
type FloatOption = options.Option[*Float]

var _ Node = (*Float)(nil)

// NewFloat creates a floating point type. Any positive widths are accepted
// here; the decoder rejects total widths other than 32 and 64.
func NewFloat(expDig, mantDig int, opts ...FloatOption) (*Float, error) {
	f := &Float{expDig: expDig, mantDig: mantDig}
	if err := options.Apply(f, opts...); err != nil {
		return nil, fmt.Errorf("%w: float: %w", errs.ErrInvalidSchema, err)
	}

	if expDig < 1 || mantDig < 1 || expDig+mantDig > 64 {
		return nil, fmt.Errorf("%w: float exp_dig=%d mant_dig=%d", errs.ErrInvalidSchema, expDig, mantDig)
	}

	if f.align == 0 {
		f.align = 1
		if f.Size()%8 == 0 {
			f.align = 8
		}
	}

	return f, nil
}

// NewFloat32 creates an IEEE-754 binary32 type.
func NewFloat32(opts ...FloatOption) (*Float, error) {
	return NewFloat(8, 24, opts...)
}

// NewFloat64 creates an IEEE-754 binary64 type.
func NewFloat64(opts ...FloatOption) (*Float, error) {
	return NewFloat(11, 53, opts...)
}

// WithFloatByteOrder sets the float's byte order.
func WithFloatByteOrder(order format.ByteOrder) FloatOption {
	return options.New(func(f *Float) error {
		switch order {
		case format.ByteOrderDefault, format.LittleEndian, format.BigEndian:
			f.order = order
			return nil
		default:
			return fmt.Errorf("invalid byte order: %v", order)
		}
	})
}

// WithFloatAlign sets the alignment in bits; it must be a power of two.
func WithFloatAlign(align int64) FloatOption {
	return options.New(func(f *Float) error {
		if !validAlign(align) {
			return fmt.Errorf("alignment %d is not a power of two", align)
		}
		f.align = align

		return nil
	})
}

func (f *Float) Kind() format.Kind           { return format.KindFloat }
func (f *Float) Alignment() int64            { return f.align }
func (f *Float) ExpDig() int                 { return f.expDig }
func (f *Float) MantDig() int                { return f.mantDig }
func (f *Float) ByteOrder() format.ByteOrder { return f.order }

// Size returns the total width in bits.
func (f *Float) Size() int { return f.expDig + f.mantDig }

func (f *Float) String() string {
	return fmt.Sprintf("f%d", f.Size())
}

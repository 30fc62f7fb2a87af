// Package value holds the decoded representation of type tree nodes.
//
// Values are produced by the decoder and are immutable once returned to the
// caller. Strings keep their raw bytes; no character encoding is assumed.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/ctfdec/format"
)

// Value is a decoded node.
type Value interface {
	Kind() format.Kind
	String() string
}

var (
	_ Value = (*Integer)(nil)
	_ Value = (*Float)(nil)
	_ Value = (*String)(nil)
	_ Value = (*Array)(nil)
	_ Value = (*Struct)(nil)
	_ Value = (*Variant)(nil)
)

// Integer is a decoded integer. The raw bits are kept so signed and
// unsigned values share one representation.
type Integer struct {
	raw    uint64
	bits   int
	signed bool
	base   format.DisplayBase
}

// NewUnsigned creates an unsigned integer value of the given declared width.
func NewUnsigned(v uint64, bits int) *Integer {
	return &Integer{raw: v, bits: bits, base: format.BaseDecimal}
}

// NewSigned creates a signed integer value of the given declared width.
func NewSigned(v int64, bits int) *Integer {
	return &Integer{raw: uint64(v), bits: bits, signed: true, base: format.BaseDecimal} //nolint:gosec
}

// WithBase returns a copy of i rendered in base.
func (i *Integer) WithBase(base format.DisplayBase) *Integer {
	c := *i
	c.base = base

	return &c
}

func (i *Integer) Kind() format.Kind { return format.KindInteger }

// Bits returns the declared width of the field the value was read from.
func (i *Integer) Bits() int    { return i.bits }
func (i *Integer) Signed() bool { return i.signed }
func (i *Integer) Uint64() uint64 {
	return i.raw
}

func (i *Integer) Int64() int64 {
	return int64(i.raw) //nolint:gosec
}

// Len interprets the value as a length or count. Negative signed values
// are rejected.
func (i *Integer) Len() (uint64, bool) {
	if i.signed && i.Int64() < 0 {
		return 0, false
	}

	return i.raw, true
}

func (i *Integer) String() string {
	if i.signed && i.base == format.BaseDecimal {
		return strconv.FormatInt(i.Int64(), 10)
	}

	// non-decimal values render as their two's complement bits
	v := i.raw
	if i.signed && i.bits > 0 && i.bits < 64 {
		v &= uint64(1)<<i.bits - 1
	}

	var prefix string
	switch i.base {
	case format.BaseHexadecimal:
		prefix = "0x"
	case format.BaseOctal:
		prefix = "0"
	case format.BaseBinary:
		prefix = "0b"
	}

	return prefix + strconv.FormatUint(v, int(i.base))
}

// Float is a decoded IEEE-754 value widened to float64.
type Float struct {
	v    float64
	bits int
}

// NewFloat creates a float value read from a field of bits width.
func NewFloat(v float64, bits int) *Float {
	return &Float{v: v, bits: bits}
}

func (f *Float) Kind() format.Kind { return format.KindFloat }
func (f *Float) Float64() float64  { return f.v }
func (f *Float) Bits() int         { return f.bits }

func (f *Float) String() string {
	if math.IsInf(f.v, 0) || math.IsNaN(f.v) {
		return strconv.FormatFloat(f.v, 'g', -1, 64)
	}

	size := 64
	if f.bits == 32 {
		size = 32
	}

	return strconv.FormatFloat(f.v, 'g', -1, size)
}

// String is a decoded byte string without its terminator.
type String struct {
	b []byte
}

// NewString creates a string value. b is retained.
func NewString(b []byte) *String {
	return &String{b: b}
}

func (s *String) Kind() format.Kind { return format.KindString }

// Bytes returns the raw bytes. Callers must not modify them.
func (s *String) Bytes() []byte { return s.b }

// Text returns the bytes as a Go string.
func (s *String) Text() string { return string(s.b) }

// String renders the value quoted.
func (s *String) String() string { return strconv.Quote(string(s.b)) }

// Array is a decoded sequence.
type Array struct {
	elems []Value
}

// NewArray creates an array value. elems is retained.
func NewArray(elems []Value) *Array {
	return &Array{elems: elems}
}

func (a *Array) Kind() format.Kind { return format.KindArray }
func (a *Array) Len() int          { return len(a.elems) }
func (a *Array) At(i int) Value    { return a.elems[i] }

// Values returns the elements. Callers must not modify the slice.
func (a *Array) Values() []Value { return a.elems }

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range a.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')

	return sb.String()
}

// Variant is a decoded tagged union.
type Variant struct {
	tag  int64
	name string
	v    Value
}

// NewVariant creates a variant value holding the member selected by tag.
func NewVariant(tag int64, name string, v Value) *Variant {
	return &Variant{tag: tag, name: name, v: v}
}

func (v *Variant) Kind() format.Kind { return format.KindVariant }
func (v *Variant) Tag() int64        { return v.tag }

// Name returns the selected case name, which may be empty.
func (v *Variant) Name() string { return v.name }
func (v *Variant) Value() Value { return v.v }

func (v *Variant) String() string {
	if v.name != "" {
		return fmt.Sprintf("<%s> %s", v.name, v.v)
	}

	return fmt.Sprintf("<%d> %s", v.tag, v.v)
}

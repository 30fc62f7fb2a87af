package schema

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// String describes a byte string. Strings are always byte aligned.
type String struct {
	encoding   format.StringEncoding
	length     int      // static buffer size in bytes
	lengthType *Integer // prefixed length type
}

var _ Node = (*String)(nil)

// NewStaticString creates a fixed n-byte string. The decoded value stops at
// the first NUL byte, or spans all n bytes if there is none.
func NewStaticString(n int) (*String, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative static string length %d", errs.ErrInvalidSchema, n)
	}

	return &String{encoding: format.StringStatic, length: n}, nil
}

// NewPrefixedString creates a string whose byte length is stored right
// before it as an integer of lengthType. The bytes are taken verbatim.
func NewPrefixedString(lengthType *Integer) (*String, error) {
	if lengthType == nil {
		return nil, fmt.Errorf("%w: prefixed string needs a length type", errs.ErrInvalidSchema)
	}
	if lengthType.Signed() {
		return nil, fmt.Errorf("%w: prefixed string length type must be unsigned", errs.ErrInvalidSchema)
	}

	return &String{encoding: format.StringPrefixed, lengthType: lengthType}, nil
}

// NewNullTerminatedString creates a string read up to and including a NUL byte.
func NewNullTerminatedString() *String {
	return &String{encoding: format.StringNullTerminated}
}

func (s *String) Kind() format.Kind               { return format.KindString }
func (s *String) Alignment() int64                { return 8 }
func (s *String) Encoding() format.StringEncoding { return s.encoding }

// Length returns the static buffer size in bytes.
func (s *String) Length() int { return s.length }

// LengthType returns the prefix integer type of a prefixed string.
func (s *String) LengthType() *Integer { return s.lengthType }

func (s *String) String() string {
	switch s.encoding {
	case format.StringStatic:
		return fmt.Sprintf("string[%d]", s.length)
	case format.StringPrefixed:
		return fmt.Sprintf("string<%s>", s.lengthType)
	default:
		return "string"
	}
}

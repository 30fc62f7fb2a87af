package schema

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// Array describes a sequence of elements of one type. Its length is either a
// fixed count or read from an earlier unsigned integer field.
type Array struct {
	element  Node
	count    int
	location FieldLocation
	dynamic  bool
}

var _ Node = (*Array)(nil)

// NewArray creates a fixed-length array of count elements.
func NewArray(element Node, count int) (*Array, error) {
	if element == nil {
		return nil, fmt.Errorf("%w: array needs an element type", errs.ErrInvalidSchema)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative array length %d", errs.ErrInvalidSchema, count)
	}

	return &Array{element: element, count: count}, nil
}

// NewDynamicArray creates an array whose length is the value of the field at loc.
func NewDynamicArray(element Node, loc FieldLocation) (*Array, error) {
	if element == nil {
		return nil, fmt.Errorf("%w: array needs an element type", errs.ErrInvalidSchema)
	}
	if len(loc.Path) == 0 {
		return nil, fmt.Errorf("%w: dynamic array needs a length location", errs.ErrInvalidSchema)
	}

	return &Array{element: element, location: loc, dynamic: true}, nil
}

func (a *Array) Kind() format.Kind { return format.KindArray }
func (a *Array) Alignment() int64  { return a.element.Alignment() }
func (a *Array) Element() Node     { return a.element }
func (a *Array) IsDynamic() bool   { return a.dynamic }

// Count returns the fixed length. It is zero for dynamic arrays.
func (a *Array) Count() int { return a.count }

// LengthLocation returns the location of the length field of a dynamic array.
func (a *Array) LengthLocation() FieldLocation { return a.location }

func (a *Array) String() string {
	if a.dynamic {
		return fmt.Sprintf("%s[%s]", a.element, a.location)
	}

	return fmt.Sprintf("%s[%d]", a.element, a.count)
}

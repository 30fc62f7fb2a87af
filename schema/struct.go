package schema

import (
	"fmt"
	"strings"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// Field is a named member of a Struct.
type Field struct {
	Name string
	Type Node
}

// Struct describes an ordered list of named fields.
type Struct struct {
	fields []Field
	index  map[string]int
	align  int64
}

var _ Node = (*Struct)(nil)

// NewStruct creates a struct from fields in declaration order. Its alignment
// is the largest of minAlign and its fields' alignments. Pass 0 or 1 as
// minAlign when the schema declares none.
func NewStruct(fields []Field, minAlign int64) (*Struct, error) {
	if minAlign <= 0 {
		minAlign = 1
	}
	if !validAlign(minAlign) {
		return nil, fmt.Errorf("%w: struct alignment %d is not a power of two", errs.ErrInvalidSchema, minAlign)
	}

	s := &Struct{
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
		align:  minAlign,
	}

	for i, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: struct field %d has no name", errs.ErrInvalidSchema, i)
		}
		if f.Type == nil {
			return nil, fmt.Errorf("%w: struct field %q has no type", errs.ErrInvalidSchema, f.Name)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate struct field %q", errs.ErrInvalidSchema, f.Name)
		}

		s.fields[i] = f
		s.index[f.Name] = i
		s.align = max(s.align, f.Type.Alignment())
	}

	return s, nil
}

func (s *Struct) Kind() format.Kind { return format.KindStruct }
func (s *Struct) Alignment() int64  { return s.align }

// NumFields returns the number of fields.
func (s *Struct) NumFields() int { return len(s.fields) }

// Field returns the i-th field in declaration order.
func (s *Struct) Field(i int) Field { return s.fields[i] }

// FieldByName returns the field called name.
func (s *Struct) FieldByName(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}

	return s.fields[i], true
}

func (s *Struct) String() string {
	var sb strings.Builder
	sb.WriteString("struct {")
	for i, f := range s.fields {
		if i > 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, " %s %s", f.Type, f.Name)
	}
	sb.WriteString(" }")

	return sb.String()
}

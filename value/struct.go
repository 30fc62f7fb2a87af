package value

import (
	"strings"

	"github.com/arloliu/ctfdec/format"
)

// Member is one named field of a decoded Struct.
type Member struct {
	Name  string
	Value Value
}

// Struct is a decoded struct with fields in declaration order.
//
// The decoder grows a Struct field by field so later fields can refer to
// earlier ones; once returned it is never modified again.
type Struct struct {
	members []Member
	index   map[string]int
}

// NewStruct creates an empty struct with room for n fields.
func NewStruct(n int) *Struct {
	return &Struct{
		members: make([]Member, 0, n),
		index:   make(map[string]int, n),
	}
}

// Append adds a field. It is meant for decoders building a value.
func (s *Struct) Append(name string, v Value) {
	s.index[name] = len(s.members)
	s.members = append(s.members, Member{Name: name, Value: v})
}

func (s *Struct) Kind() format.Kind { return format.KindStruct }
func (s *Struct) Len() int          { return len(s.members) }
func (s *Struct) At(i int) Member   { return s.members[i] }

// Members returns the fields in order. Callers must not modify the slice.
func (s *Struct) Members() []Member { return s.members }

// Field returns the field called name.
func (s *Struct) Field(name string) (Value, bool) {
	if s == nil {
		return nil, false
	}

	i, ok := s.index[name]
	if !ok {
		return nil, false
	}

	return s.members[i].Value, true
}

// Uint returns the unsigned integer field called name.
func (s *Struct) Uint(name string) (uint64, bool) {
	v, ok := s.Field(name)
	if !ok {
		return 0, false
	}

	return AsUint(v)
}

func (s *Struct) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range s.members {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(m.Name)
		sb.WriteString(" = ")
		sb.WriteString(m.Value.String())
	}
	sb.WriteByte('}')

	return sb.String()
}

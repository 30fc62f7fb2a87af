package value

import (
	"math"
	"strconv"
)

// Unwrap follows variants down to the selected member value.
func Unwrap(v Value) Value {
	for {
		vv, ok := v.(*Variant)
		if !ok {
			return v
		}
		v = vv.v
	}
}

// Lookup walks path through nested structs starting at v. Variants are
// traversed transparently; a path element equal to the selected case name
// steps into the variant explicitly.
func Lookup(v Value, path ...string) (Value, bool) {
	cur := v
	for _, name := range path {
		if vv, ok := cur.(*Variant); ok && vv.name == name {
			cur = vv.v
			continue
		}

		s, ok := Unwrap(cur).(*Struct)
		if !ok {
			return nil, false
		}
		if cur, ok = s.Field(name); !ok {
			return nil, false
		}
	}

	return cur, true
}

// AsUint returns v as a non-negative integer, following variants.
func AsUint(v Value) (uint64, bool) {
	i, ok := Unwrap(v).(*Integer)
	if !ok {
		return 0, false
	}

	return i.Len()
}

// AsInt returns v as a signed integer, following variants. Unsigned values
// are reinterpreted as two's complement.
func AsInt(v Value) (int64, bool) {
	i, ok := Unwrap(v).(*Integer)
	if !ok {
		return 0, false
	}

	return i.Int64(), true
}

// Native converts v into plain Go values for generic encoders. Structs
// become map[string]any and variants their selected member. Non-finite
// floats become the strings "NaN", "+Inf" and "-Inf", which JSON and
// similar encoders cannot represent as numbers.
func Native(v Value) any {
	switch t := v.(type) {
	case *Integer:
		if t.signed {
			return t.Int64()
		}
		return t.raw
	case *Float:
		if math.IsNaN(t.v) || math.IsInf(t.v, 0) {
			return strconv.FormatFloat(t.v, 'g', -1, 64)
		}
		return t.v
	case *String:
		return t.Text()
	case *Array:
		out := make([]any, len(t.elems))
		for i, e := range t.elems {
			out[i] = Native(e)
		}
		return out
	case *Struct:
		out := make(map[string]any, len(t.members))
		for _, m := range t.members {
			out[m.Name] = Native(m.Value)
		}
		return out
	case *Variant:
		return Native(t.v)
	default:
		return nil
	}
}

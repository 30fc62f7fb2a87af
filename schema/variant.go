package schema

import (
	"fmt"
	"strings"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// VariantCase maps one selector value to a member type.
type VariantCase struct {
	Tag  int64
	Name string
	Type Node
}

// Variant is a tagged union whose member is chosen by the integer value of
// an earlier field. There is no default case.
type Variant struct {
	selector FieldLocation
	cases    []VariantCase
	byTag    map[int64]int
}

var _ Node = (*Variant)(nil)

// NewVariant creates a variant selected by the field at selector.
func NewVariant(selector FieldLocation, cases []VariantCase) (*Variant, error) {
	if len(selector.Path) == 0 {
		return nil, fmt.Errorf("%w: variant needs a selector location", errs.ErrInvalidSchema)
	}

	v := &Variant{
		selector: selector,
		cases:    make([]VariantCase, len(cases)),
		byTag:    make(map[int64]int, len(cases)),
	}

	names := make(map[string]struct{}, len(cases))
	for i, c := range cases {
		if c.Type == nil {
			return nil, fmt.Errorf("%w: variant case %d has no type", errs.ErrInvalidSchema, c.Tag)
		}
		if _, dup := v.byTag[c.Tag]; dup {
			return nil, fmt.Errorf("%w: duplicate variant tag %d", errs.ErrInvalidSchema, c.Tag)
		}
		if c.Name != "" {
			if _, dup := names[c.Name]; dup {
				return nil, fmt.Errorf("%w: duplicate variant case name %q", errs.ErrInvalidSchema, c.Name)
			}
			names[c.Name] = struct{}{}
		}

		v.cases[i] = c
		v.byTag[c.Tag] = i
	}

	return v, nil
}

func (v *Variant) Kind() format.Kind { return format.KindVariant }

// Alignment is 1: the chosen member applies its own alignment.
func (v *Variant) Alignment() int64 { return 1 }

// Selector returns the location of the selector field.
func (v *Variant) Selector() FieldLocation { return v.selector }

// NumCases returns the number of cases.
func (v *Variant) NumCases() int { return len(v.cases) }

// CaseAt returns the i-th case in declaration order.
func (v *Variant) CaseAt(i int) VariantCase { return v.cases[i] }

// Case returns the case for tag.
func (v *Variant) Case(tag int64) (VariantCase, bool) {
	i, ok := v.byTag[tag]
	if !ok {
		return VariantCase{}, false
	}

	return v.cases[i], true
}

func (v *Variant) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "variant <%s> {", v.selector)
	for i, c := range v.cases {
		if i > 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, " %d: %s", c.Tag, c.Type)
	}
	sb.WriteString(" }")

	return sb.String()
}

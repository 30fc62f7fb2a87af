package schema

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// Node is a read-only type tree node.
type Node interface {
	// Kind reports which concrete node type this is.
	Kind() format.Kind
	// Alignment is the alignment in bits the decoder applies before reading
	// the node. 1 means no alignment.
	Alignment() int64
	// String renders a compact description of the node, for diagnostics.
	String() string
}

// Must panics if err is non-nil. It is meant for statically known schemas.
func Must[T Node](n T, err error) T {
	if err != nil {
		panic(err)
	}

	return n
}

func validAlign(align int64) bool {
	return align > 0 && align&(align-1) == 0
}

// Validate walks the tree rooted at n and checks that every node was built
// through its constructor. Constructors already reject malformed input, so
// this mostly catches zero-value nodes and nil members in hand-built trees.
func Validate(n Node) error {
	return validate(n, "")
}

func validate(n Node, path string) error {
	if n == nil {
		return fmt.Errorf("%w: nil node at %q", errs.ErrInvalidSchema, path)
	}

	switch t := n.(type) {
	case *Integer:
		if t.size < 1 || t.size > 64 || !validAlign(t.align) {
			return fmt.Errorf("%w: uninitialized integer at %q", errs.ErrInvalidSchema, path)
		}
	case *Float:
		if t.expDig < 1 || t.mantDig < 1 || !validAlign(t.align) {
			return fmt.Errorf("%w: uninitialized float at %q", errs.ErrInvalidSchema, path)
		}
	case *String:
		if t.encoding == format.StringPrefixed {
			return validate(t.lengthType, path+"<length>")
		}
		if t.encoding == 0 {
			return fmt.Errorf("%w: uninitialized string at %q", errs.ErrInvalidSchema, path)
		}
	case *Array:
		if t.dynamic && len(t.location.Path) == 0 {
			return fmt.Errorf("%w: dynamic array without length location at %q", errs.ErrInvalidSchema, path)
		}
		return validate(t.element, path+"[]")
	case *Struct:
		if t.index == nil {
			return fmt.Errorf("%w: uninitialized struct at %q", errs.ErrInvalidSchema, path)
		}
		for _, f := range t.fields {
			if err := validate(f.Type, joinPath(path, f.Name)); err != nil {
				return err
			}
		}
	case *Variant:
		if t.byTag == nil || len(t.selector.Path) == 0 {
			return fmt.Errorf("%w: uninitialized variant at %q", errs.ErrInvalidSchema, path)
		}
		for _, c := range t.cases {
			if err := validate(c.Type, fmt.Sprintf("%s<%d>", path, c.Tag)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: unknown node type %T at %q", errs.ErrInvalidSchema, n, path)
	}

	return nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

package decode

import (
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/value"
)

const numRoots = int(schema.RootEventPayload) + 1

// Scope tracks the values a FieldLocation may refer to: the stack of structs
// being decoded and the dynamic scope roots decoded so far in the packet.
//
// A Scope belongs to a single decode and is not safe for concurrent use.
type Scope struct {
	roots  [numRoots]*value.Struct
	frames []*value.Struct
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{frames: make([]*value.Struct, 0, 8)}
}

// Reset clears every root and frame, for reuse on the next packet.
func (s *Scope) Reset() {
	s.roots = [numRoots]*value.Struct{}
	s.frames = s.frames[:0]
}

// ResetEvent clears the event level roots, keeping packet header and context.
func (s *Scope) ResetEvent() {
	for r := schema.RootEventHeader; r <= schema.RootEventPayload; r++ {
		s.roots[r] = nil
	}
	s.frames = s.frames[:0]
}

// SetRoot registers v as the value of a dynamic scope root. The decoder
// registers a root struct before its first field is read, so absolute
// locations may point into the root still being decoded.
func (s *Scope) SetRoot(root schema.Root, v *value.Struct) {
	if root == schema.RootRelative || int(root) >= numRoots {
		return
	}
	s.roots[root] = v
}

// Root returns the value registered for root, or nil.
func (s *Scope) Root(root schema.Root) *value.Struct {
	if root == schema.RootRelative || int(root) >= numRoots {
		return nil
	}

	return s.roots[root]
}

func (s *Scope) push(v *value.Struct) {
	s.frames = append(s.frames, v)
}

func (s *Scope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Resolve returns the already decoded value at loc.
//
// Relative locations are searched in the innermost struct first and then in
// each enclosing struct. Absolute locations start at their root. Variants on
// the way are traversed transparently.
func (s *Scope) Resolve(loc schema.FieldLocation) (value.Value, error) {
	if len(loc.Path) == 0 {
		return nil, fmt.Errorf("%w: empty location", errs.ErrUnresolvedFieldLocation)
	}

	if loc.IsAbsolute() {
		if root := s.Root(loc.Root); root != nil {
			if v, ok := value.Lookup(root, loc.Path...); ok {
				return v, nil
			}
		}

		return nil, fmt.Errorf("%w: %s", errs.ErrUnresolvedFieldLocation, loc)
	}

	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := value.Lookup(s.frames[i], loc.Path...); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrUnresolvedFieldLocation, loc)
}

// ResolveUint resolves loc and requires a non-negative integer.
func (s *Scope) ResolveUint(loc schema.FieldLocation) (uint64, error) {
	v, err := s.Resolve(loc)
	if err != nil {
		return 0, err
	}

	n, ok := value.AsUint(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %s, not an unsigned integer", errs.ErrUnresolvedFieldLocation, loc, v)
	}

	return n, nil
}

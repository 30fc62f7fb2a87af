package decode

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/ctfdec/bitio"
	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/internal/options"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/value"
)

const (
	// DefaultMaxDepth bounds type nesting during decoding.
	DefaultMaxDepth = 64
	// DefaultMaxElements bounds the length of a single array.
	DefaultMaxElements = 1 << 20
)

// Decoder reads values described by type tree nodes.
//
// A Decoder holds configuration only and is safe for concurrent use. The
// cursor and scope passed to each call belong to that call.
type Decoder struct {
	maxDepth    int
	maxElements int
	order       format.ByteOrder
}

// Option configures a Decoder.
type Option = options.Option[*Decoder]

// NewDecoder creates a decoder.
func NewDecoder(opts ...Option) (*Decoder, error) {
	d := &Decoder{
		maxDepth:    DefaultMaxDepth,
		maxElements: DefaultMaxElements,
		order:       format.LittleEndian,
	}

	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// WithMaxDepth sets the maximum nesting depth of compound types.
func WithMaxDepth(depth int) Option {
	return options.New(func(d *Decoder) error {
		if depth < 1 {
			return fmt.Errorf("max depth must be positive, got %d", depth)
		}
		d.maxDepth = depth

		return nil
	})
}

// WithMaxElements sets the maximum element count of one array.
func WithMaxElements(n int) Option {
	return options.New(func(d *Decoder) error {
		if n < 0 {
			return fmt.Errorf("max elements must not be negative, got %d", n)
		}
		d.maxElements = n

		return nil
	})
}

// WithDefaultByteOrder sets the byte order for nodes that declare none,
// normally the trace byte order.
func WithDefaultByteOrder(order format.ByteOrder) Option {
	return options.New(func(d *Decoder) error {
		if order != format.LittleEndian && order != format.BigEndian {
			return fmt.Errorf("invalid default byte order: %v", order)
		}
		d.order = order

		return nil
	})
}

// MaxDepth returns the configured nesting limit.
func (d *Decoder) MaxDepth() int { return d.maxDepth }

// MaxElements returns the configured array length limit.
func (d *Decoder) MaxElements() int { return d.maxElements }

// ByteOrder returns the byte order applied to nodes that declare none.
func (d *Decoder) ByteOrder() format.ByteOrder { return d.order }

// Decode reads one value of type n at the cursor. Relative locations inside
// n resolve against scope.
func (d *Decoder) Decode(c *bitio.Cursor, n schema.Node, scope *Scope) (value.Value, error) {
	st := &state{d: d, c: c, scope: scope}

	return st.node(n)
}

// DecodeRoot reads the struct of a dynamic scope root and registers it in
// scope. Absolute locations into root resolve while it is being decoded.
func (d *Decoder) DecodeRoot(c *bitio.Cursor, root schema.Root, n *schema.Struct, scope *Scope) (*value.Struct, error) {
	st := &state{d: d, c: c, scope: scope}
	if root != schema.RootRelative {
		st.path = append(st.path, root.String())
	}

	if err := st.align(n.Alignment()); err != nil {
		return nil, err
	}

	out := value.NewStruct(n.NumFields())
	scope.SetRoot(root, out)
	if err := st.fields(n, out); err != nil {
		return nil, err
	}

	return out, nil
}

type state struct {
	d     *Decoder
	c     *bitio.Cursor
	scope *Scope
	depth int
	path  []string
}

func (st *state) fail(err error) error {
	return errs.AtOffset(err, st.c.Pos(), st.pathString())
}

func (st *state) pathString() string {
	var sb strings.Builder
	for i, p := range st.path {
		if i > 0 && !strings.HasPrefix(p, "[") && !strings.HasPrefix(p, "<") {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}

	return sb.String()
}

func (st *state) enter(segment string) error {
	st.depth++
	st.path = append(st.path, segment)
	if st.depth > st.d.maxDepth {
		return st.fail(fmt.Errorf("%w: limit %d", errs.ErrMaxDepthExceeded, st.d.maxDepth))
	}

	return nil
}

func (st *state) leave() {
	st.depth--
	st.path = st.path[:len(st.path)-1]
}

func (st *state) align(a int64) error {
	if err := st.c.AlignTo(a); err != nil {
		return st.fail(err)
	}

	return nil
}

func (st *state) node(n schema.Node) (value.Value, error) {
	if err := st.align(n.Alignment()); err != nil {
		return nil, err
	}

	switch t := n.(type) {
	case *schema.Integer:
		return st.integer(t)
	case *schema.Float:
		return st.float(t)
	case *schema.String:
		return st.str(t)
	case *schema.Array:
		return st.array(t)
	case *schema.Struct:
		out := value.NewStruct(t.NumFields())
		if err := st.fields(t, out); err != nil {
			return nil, err
		}
		return out, nil
	case *schema.Variant:
		return st.variant(t)
	default:
		return nil, st.fail(fmt.Errorf("%w: unsupported node %T", errs.ErrInvalidSchema, n))
	}
}

func (st *state) integer(n *schema.Integer) (*value.Integer, error) {
	var out *value.Integer

	if n.Encoding() == format.IntLEB128 {
		if n.Signed() {
			v, err := st.c.ReadSLEB128()
			if err != nil {
				return nil, st.fail(err)
			}
			out = value.NewSigned(v, n.Size())
		} else {
			v, err := st.c.ReadULEB128()
			if err != nil {
				return nil, st.fail(err)
			}
			out = value.NewUnsigned(v, n.Size())
		}
	} else {
		order := n.ByteOrder().Resolve(st.d.order)
		if n.Signed() {
			v, err := st.c.ReadSignedBits(n.Size(), order)
			if err != nil {
				return nil, st.fail(err)
			}
			out = value.NewSigned(v, n.Size())
		} else {
			v, err := st.c.ReadBits(n.Size(), order)
			if err != nil {
				return nil, st.fail(err)
			}
			out = value.NewUnsigned(v, n.Size())
		}
	}

	if n.Base() != format.BaseDecimal {
		out = out.WithBase(n.Base())
	}

	return out, nil
}

func (st *state) float(n *schema.Float) (*value.Float, error) {
	order := n.ByteOrder().Resolve(st.d.order)

	switch {
	case n.ExpDig() == 8 && n.MantDig() == 24:
		bits, err := st.c.ReadBits(32, order)
		if err != nil {
			return nil, st.fail(err)
		}
		return value.NewFloat(float64(math.Float32frombits(uint32(bits))), 32), nil
	case n.ExpDig() == 11 && n.MantDig() == 53:
		bits, err := st.c.ReadBits(64, order)
		if err != nil {
			return nil, st.fail(err)
		}
		return value.NewFloat(math.Float64frombits(bits), 64), nil
	default:
		return nil, st.fail(fmt.Errorf("%w: exp_dig=%d mant_dig=%d",
			errs.ErrUnsupportedFloatWidth, n.ExpDig(), n.MantDig()))
	}
}

func (st *state) str(n *schema.String) (*value.String, error) {
	switch n.Encoding() {
	case format.StringStatic:
		b, err := st.c.ReadBytes(n.Length())
		if err != nil {
			return nil, st.fail(err)
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
		return value.NewString(bytes.Clone(b)), nil

	case format.StringPrefixed:
		if err := st.enter("<length>"); err != nil {
			return nil, err
		}
		if err := st.align(n.LengthType().Alignment()); err != nil {
			return nil, err
		}
		length, err := st.integer(n.LengthType())
		st.leave()
		if err != nil {
			return nil, err
		}

		size := length.Uint64()
		if size > uint64(st.c.Remaining()/8) {
			return nil, st.fail(fmt.Errorf("%w: string of %d bytes, %d bits remain",
				errs.ErrOutOfBounds, size, st.c.Remaining()))
		}
		b, err := st.c.ReadBytes(int(size))
		if err != nil {
			return nil, st.fail(err)
		}
		return value.NewString(bytes.Clone(b)), nil

	case format.StringNullTerminated:
		size := 0
		for {
			b, ok := st.c.PeekByteAt(size)
			if !ok {
				return nil, st.fail(fmt.Errorf("%w: unterminated string", errs.ErrOutOfBounds))
			}
			if b == 0 {
				break
			}
			size++
		}
		b, err := st.c.ReadBytes(size + 1)
		if err != nil {
			return nil, st.fail(err)
		}
		return value.NewString(bytes.Clone(b[:size])), nil

	default:
		return nil, st.fail(fmt.Errorf("%w: unknown string encoding %v", errs.ErrInvalidSchema, n.Encoding()))
	}
}

func (st *state) array(n *schema.Array) (*value.Array, error) {
	count := uint64(n.Count()) //nolint:gosec
	if n.IsDynamic() {
		var err error
		if count, err = st.scope.ResolveUint(n.LengthLocation()); err != nil {
			return nil, st.fail(err)
		}
	}

	if count > uint64(st.d.maxElements) { //nolint:gosec
		return nil, st.fail(fmt.Errorf("%w: %d elements, limit %d", errs.ErrArrayTooLong, count, st.d.maxElements))
	}

	elems := make([]value.Value, 0, min(count, 1024))
	for i := range int(count) { //nolint:gosec
		if err := st.enter("[" + strconv.Itoa(i) + "]"); err != nil {
			return nil, err
		}
		v, err := st.node(n.Element())
		st.leave()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}

	return value.NewArray(elems), nil
}

// fields reads each field of n into out. out is pushed as the innermost
// frame so later fields can resolve earlier ones.
func (st *state) fields(n *schema.Struct, out *value.Struct) error {
	st.scope.push(out)
	defer st.scope.pop()

	for i := range n.NumFields() {
		f := n.Field(i)
		if err := st.enter(f.Name); err != nil {
			return err
		}
		v, err := st.node(f.Type)
		st.leave()
		if err != nil {
			return err
		}
		out.Append(f.Name, v)
	}

	return nil
}

func (st *state) variant(n *schema.Variant) (*value.Variant, error) {
	sel, err := st.scope.Resolve(n.Selector())
	if err != nil {
		return nil, st.fail(err)
	}
	i, ok := value.Unwrap(sel).(*value.Integer)
	if !ok {
		return nil, st.fail(fmt.Errorf("%w: %s is %s, not an integer",
			errs.ErrUnresolvedFieldLocation, n.Selector(), sel))
	}
	if !i.Signed() && i.Uint64() > math.MaxInt64 {
		return nil, st.fail(fmt.Errorf("%w: %s = %d", errs.ErrUnmatchedVariantSelector, n.Selector(), i.Uint64()))
	}
	tag := i.Int64()

	c, ok := n.Case(tag)
	if !ok {
		return nil, st.fail(fmt.Errorf("%w: %s = %d", errs.ErrUnmatchedVariantSelector, n.Selector(), tag))
	}

	segment := "<" + c.Name + ">"
	if c.Name == "" {
		segment = "<" + strconv.FormatInt(tag, 10) + ">"
	}
	if err := st.enter(segment); err != nil {
		return nil, err
	}
	v, err := st.node(c.Type)
	st.leave()
	if err != nil {
		return nil, err
	}

	return value.NewVariant(tag, c.Name, v), nil
}

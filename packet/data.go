package packet

import (
	"errors"
	"fmt"

	"github.com/arloliu/ctfdec/bitio"
	"github.com/arloliu/ctfdec/decode"
	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/value"
)

// Decoder decodes data packets of one trace.
type Decoder struct {
	trace  *schema.Trace
	names  schema.FieldNames
	values *decode.Decoder
}

// NewDecoder creates a packet decoder for trace. Value decoder options such
// as decode.WithMaxDepth are passed through; the trace byte order is applied
// to nodes that declare none.
func NewDecoder(trace *schema.Trace, opts ...decode.Option) (*Decoder, error) {
	if trace == nil {
		return nil, fmt.Errorf("%w: nil trace", errs.ErrInvalidSchema)
	}

	all := append([]decode.Option{decode.WithDefaultByteOrder(trace.ByteOrder())}, opts...)
	values, err := decode.NewDecoder(all...)
	if err != nil {
		return nil, err
	}

	return &Decoder{
		trace:  trace,
		names:  trace.FieldNames(),
		values: values,
	}, nil
}

// Trace returns the schema the decoder was created with.
func (d *Decoder) Trace() *schema.Trace {
	return d.trace
}

// DecodePacket decodes the packet starting at byte offset within data.
// The next packet starts at offset + p.Size().
//
// Narrow event timestamps are extended from the packet's begin timestamp
// only; use a StreamDecoder to carry the clock across packets.
func (d *Decoder) DecodePacket(data []byte, offset int64) (*Packet, error) {
	var clk clock

	return d.decodePacket(data, offset, &clk)
}

func (d *Decoder) decodePacket(data []byte, offset int64, clk *clock) (*Packet, error) {
	if offset < 0 || offset >= int64(len(data)) {
		return nil, fmt.Errorf("%w: packet offset %d, stream of %d bytes", errs.ErrOutOfBounds, offset, len(data))
	}

	p, err := d.decode(data[offset:], clk)
	if err != nil {
		return nil, fmt.Errorf("packet at byte %d: %w", offset, err)
	}
	p.Offset = offset

	return p, nil
}

func (d *Decoder) decode(data []byte, clk *clock) (*Packet, error) {
	c := bitio.NewCursor(data)
	scope := decode.NewScope()
	p := &Packet{}

	sc, err := d.decodeHeader(c, scope, p)
	if err != nil {
		return nil, err
	}
	p.StreamClassID = sc.ID()

	if err := d.decodeContext(c, scope, sc, p); err != nil {
		return nil, err
	}

	if p.HasTimestamps {
		clk.update(p.BeginTimestamp, 64)
	}

	if err := c.Limit(p.ContentBits); err != nil {
		return nil, err
	}

	for c.Remaining() > 0 {
		start := c.Pos()
		ev, err := d.decodeEvent(c, scope, sc, clk)
		if err != nil {
			if errors.Is(err, errs.ErrOutOfBounds) {
				return nil, fmt.Errorf("%w: event %d at bit %d: %w", errs.ErrEventRecordOverrun, len(p.Events), start, err)
			}
			return nil, fmt.Errorf("event %d at bit %d: %w", len(p.Events), start, err)
		}
		if c.Pos() == start {
			return nil, fmt.Errorf("%w: event %d at bit %d has zero size", errs.ErrSizeInvariantViolation, len(p.Events), start)
		}
		p.Events = append(p.Events, ev)
	}

	return p, nil
}

func (d *Decoder) decodeHeader(c *bitio.Cursor, scope *decode.Scope, p *Packet) (*schema.StreamClass, error) {
	if hdr := d.trace.PacketHeader(); hdr != nil {
		v, err := d.values.DecodeRoot(c, schema.RootPacketHeader, hdr, scope)
		if err != nil {
			return nil, err
		}
		p.Header = v

		if magic, ok := v.Field(d.names.Magic); ok {
			if n, _ := value.AsUint(magic); n != uint64(schema.PacketMagic) {
				return nil, fmt.Errorf("%w: packet magic %#x, want %#x", errs.ErrInvalidMagicNumber, n, schema.PacketMagic)
			}
		}

		if want, ok := d.trace.UUID(); ok {
			if f, ok := v.Field(d.names.UUID); ok {
				got, ok := uuidBytes(f)
				if !ok || got != want {
					return nil, fmt.Errorf("%w: packet uuid %s", errs.ErrUUIDMismatch, f)
				}
			}
		}
	}

	var (
		classID  uint64
		hasClass bool
	)
	if id, ok := p.Header.Uint(d.names.StreamClassID); ok {
		classID, hasClass = id, true
	}
	if id, ok := p.Header.Uint(d.names.StreamID); ok {
		p.StreamID, p.HasStreamID = id, true
		if !hasClass {
			classID, hasClass = id, true
		}
	}

	if !hasClass {
		sc, ok := d.trace.DefaultStreamClass()
		if !ok {
			return nil, fmt.Errorf("%w: packet header has no stream class id", errs.ErrUnknownStreamClass)
		}

		return sc, nil
	}

	sc, ok := d.trace.StreamClass(classID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownStreamClass, classID)
	}

	return sc, nil
}

func (d *Decoder) decodeContext(c *bitio.Cursor, scope *decode.Scope, sc *schema.StreamClass, p *Packet) error {
	if ctx := sc.PacketContext(); ctx != nil {
		v, err := d.values.DecodeRoot(c, schema.RootPacketContext, ctx, scope)
		if err != nil {
			return err
		}
		p.Context = v
	}

	p.TotalBits = c.Len()
	if n, ok := p.Context.Uint(d.names.PacketSize); ok {
		p.TotalBits = int64(n) //nolint:gosec
	}
	p.ContentBits = p.TotalBits
	if n, ok := p.Context.Uint(d.names.ContentSize); ok {
		p.ContentBits = int64(n) //nolint:gosec
	}

	switch {
	case p.ContentBits%8 != 0 || p.TotalBits%8 != 0:
		return fmt.Errorf("%w: content %d bits, total %d bits, not byte multiples",
			errs.ErrSizeInvariantViolation, p.ContentBits, p.TotalBits)
	case p.ContentBits > p.TotalBits:
		return fmt.Errorf("%w: content %d bits exceeds total %d bits",
			errs.ErrSizeInvariantViolation, p.ContentBits, p.TotalBits)
	case p.ContentBits < c.Pos():
		return fmt.Errorf("%w: content %d bits ends inside the packet header (%d bits)",
			errs.ErrSizeInvariantViolation, p.ContentBits, c.Pos())
	case p.TotalBits == 0:
		return fmt.Errorf("%w: empty packet", errs.ErrSizeInvariantViolation)
	case p.TotalBits > c.Len():
		return fmt.Errorf("%w: packet of %d bits, %d bits left in stream", errs.ErrOutOfBounds, p.TotalBits, c.Len())
	}

	begin, okBegin := p.Context.Uint(d.names.BeginTimestamp)
	end, okEnd := p.Context.Uint(d.names.EndTimestamp)
	if okBegin {
		p.BeginTimestamp, p.EndTimestamp, p.HasTimestamps = begin, end, true
		if !okEnd {
			p.EndTimestamp = begin
		}
	}
	p.DiscardedEvents, _ = p.Context.Uint(d.names.DiscardedEvents)
	p.SequenceNumber, p.HasSequence = p.Context.Uint(d.names.SequenceNumber)

	return nil
}

func (d *Decoder) decodeEvent(c *bitio.Cursor, scope *decode.Scope, sc *schema.StreamClass, clk *clock) (EventRecord, error) {
	var ev EventRecord
	scope.ResetEvent()

	if hdr := sc.EventHeader(); hdr != nil {
		v, err := d.values.DecodeRoot(c, schema.RootEventHeader, hdr, scope)
		if err != nil {
			return ev, err
		}
		ev.Header = v
	}

	ec, err := d.eventClass(scope, sc)
	if err != nil {
		return ev, err
	}
	ev.ClassID, ev.Name = ec.ID(), ec.Name()

	for _, loc := range d.names.Timestamp {
		v, err := scope.Resolve(loc)
		if err != nil {
			continue
		}
		if i, ok := value.Unwrap(v).(*value.Integer); ok {
			ev.Timestamp, ev.HasTimestamp = clk.update(i.Uint64(), i.Bits()), true
			break
		}
	}

	scopes := []struct {
		root schema.Root
		node *schema.Struct
		dst  **value.Struct
	}{
		{schema.RootEventCommonContext, sc.EventCommonContext(), &ev.CommonContext},
		{schema.RootEventSpecificContext, ec.SpecificContext(), &ev.SpecificContext},
		{schema.RootEventPayload, ec.Payload(), &ev.Payload},
	}
	for _, s := range scopes {
		if s.node == nil {
			continue
		}
		v, err := d.values.DecodeRoot(c, s.root, s.node, scope)
		if err != nil {
			return ev, err
		}
		*s.dst = v
	}

	return ev, nil
}

func (d *Decoder) eventClass(scope *decode.Scope, sc *schema.StreamClass) (*schema.EventClass, error) {
	for _, loc := range d.names.EventClassID {
		v, err := scope.Resolve(loc)
		if err != nil {
			continue
		}
		id, ok := value.AsUint(v)
		if !ok {
			return nil, fmt.Errorf("%w: id %s is %s, not an unsigned integer", errs.ErrUnknownEventClass, loc, v)
		}

		ec, ok := sc.EventClass(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d in stream class %d", errs.ErrUnknownEventClass, id, sc.ID())
		}

		return ec, nil
	}

	if classes := sc.EventClasses(); len(classes) == 1 {
		return classes[0], nil
	}

	return nil, fmt.Errorf("%w: event header has no event class id", errs.ErrUnknownEventClass)
}

// uuidBytes extracts a UUID from a 16-element integer array or a 16-byte string.
func uuidBytes(v value.Value) ([16]byte, bool) {
	var out [16]byte

	switch t := v.(type) {
	case *value.Array:
		if t.Len() != len(out) {
			return out, false
		}
		for i, e := range t.Values() {
			n, ok := value.AsUint(e)
			if !ok || n > 0xff {
				return out, false
			}
			out[i] = byte(n)
		}
		return out, true
	case *value.String:
		if len(t.Bytes()) != len(out) {
			return out, false
		}
		copy(out[:], t.Bytes())
		return out, true
	default:
		return out, false
	}
}

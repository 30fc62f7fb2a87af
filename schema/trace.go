package schema

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
	"github.com/arloliu/ctfdec/internal/options"
)

// PacketMagic is the value of the packet header magic field.
const PacketMagic uint32 = 0xc1fc1fc1

// FieldNames lists the well-known field names the packet decoder looks for
// in the schema-declared header and context structs. A name that is absent
// from the schema is simply not used.
type FieldNames struct {
	Magic         string
	UUID          string
	StreamClassID string
	StreamID      string

	BeginTimestamp  string
	EndTimestamp    string
	DiscardedEvents string
	ContentSize     string
	PacketSize      string
	SequenceNumber  string

	// EventClassID and Timestamp are tried in order against the decoded
	// event header; the first location that resolves wins.
	EventClassID []FieldLocation
	Timestamp    []FieldLocation
}

// DefaultFieldNames returns the field names used when a trace declares none.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Magic:           "magic",
		UUID:            "stream_uuid",
		StreamClassID:   "stream_class_id",
		StreamID:        "stream_id",
		BeginTimestamp:  "begin_ts",
		EndTimestamp:    "end_ts",
		DiscardedEvents: "discarded_event_counter",
		ContentSize:     "content_length",
		PacketSize:      "total_length",
		SequenceNumber:  "packet_seq_num",
		EventClassID:    []FieldLocation{Absolute(RootEventHeader, "event_class_id")},
		Timestamp:       []FieldLocation{Absolute(RootEventHeader, "timestamp")},
	}
}

// EventClass describes one kind of event record.
type EventClass struct {
	id              uint64
	name            string
	specificContext *Struct
	payload         *Struct
}

// NewEventClass creates an event class. specificContext may be nil.
func NewEventClass(id uint64, name string, payload *Struct, specificContext *Struct) (*EventClass, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: event class %d (%s) has no payload type", errs.ErrInvalidSchema, id, name)
	}

	return &EventClass{id: id, name: name, payload: payload, specificContext: specificContext}, nil
}

func (e *EventClass) ID() uint64               { return e.id }
func (e *EventClass) Name() string             { return e.name }
func (e *EventClass) Payload() *Struct         { return e.payload }
func (e *EventClass) SpecificContext() *Struct { return e.specificContext }

// StreamClass describes the packet context and event layout shared by all
// packets of one stream class.
type StreamClass struct {
	id                 uint64
	packetContext      *Struct
	eventHeader        *Struct
	eventCommonContext *Struct
	events             map[uint64]*EventClass
}

// StreamClassOption configures a StreamClass.
type StreamClassOption = options.Option[*StreamClass]

// NewStreamClass creates a stream class.
func NewStreamClass(id uint64, opts ...StreamClassOption) (*StreamClass, error) {
	sc := &StreamClass{id: id, events: make(map[uint64]*EventClass)}
	if err := options.Apply(sc, opts...); err != nil {
		return nil, fmt.Errorf("%w: stream class %d: %w", errs.ErrInvalidSchema, id, err)
	}

	if len(sc.events) > 1 && sc.eventHeader == nil {
		return nil, fmt.Errorf("%w: stream class %d has %d event classes but no event header",
			errs.ErrInvalidSchema, id, len(sc.events))
	}

	return sc, nil
}

// WithPacketContext sets the packet context type.
func WithPacketContext(s *Struct) StreamClassOption {
	return options.NoError(func(sc *StreamClass) {
		sc.packetContext = s
	})
}

// WithEventHeader sets the event header type.
func WithEventHeader(s *Struct) StreamClassOption {
	return options.NoError(func(sc *StreamClass) {
		sc.eventHeader = s
	})
}

// WithEventCommonContext sets the context type shared by every event of the stream.
func WithEventCommonContext(s *Struct) StreamClassOption {
	return options.NoError(func(sc *StreamClass) {
		sc.eventCommonContext = s
	})
}

// WithEventClass registers an event class.
func WithEventClass(ec *EventClass) StreamClassOption {
	return options.New(func(sc *StreamClass) error {
		if ec == nil {
			return fmt.Errorf("nil event class")
		}
		if _, dup := sc.events[ec.id]; dup {
			return fmt.Errorf("duplicate event class id %d", ec.id)
		}
		sc.events[ec.id] = ec

		return nil
	})
}

func (sc *StreamClass) ID() uint64                  { return sc.id }
func (sc *StreamClass) PacketContext() *Struct      { return sc.packetContext }
func (sc *StreamClass) EventHeader() *Struct        { return sc.eventHeader }
func (sc *StreamClass) EventCommonContext() *Struct { return sc.eventCommonContext }

// EventClass returns the event class registered under id.
func (sc *StreamClass) EventClass(id uint64) (*EventClass, bool) {
	ec, ok := sc.events[id]
	return ec, ok
}

// EventClasses returns all event classes ordered by id.
func (sc *StreamClass) EventClasses() []*EventClass {
	ids := slices.Sorted(maps.Keys(sc.events))
	out := make([]*EventClass, 0, len(ids))
	for _, id := range ids {
		out = append(out, sc.events[id])
	}

	return out
}

// Trace is the root of a decoded schema: the packet header type plus every
// stream class. It is immutable after NewTrace returns.
type Trace struct {
	uuid         [16]byte
	hasUUID      bool
	order        format.ByteOrder
	packetHeader *Struct
	streams      map[uint64]*StreamClass
	names        FieldNames
}

// TraceOption configures a Trace.
type TraceOption = options.Option[*Trace]

// NewTrace creates a trace schema. At least one stream class is required;
// with more than one, the packet header must carry the stream class id field.
func NewTrace(opts ...TraceOption) (*Trace, error) {
	t := &Trace{
		order:   format.LittleEndian,
		streams: make(map[uint64]*StreamClass),
		names:   DefaultFieldNames(),
	}

	if err := options.Apply(t, opts...); err != nil {
		return nil, fmt.Errorf("%w: trace: %w", errs.ErrInvalidSchema, err)
	}

	if len(t.streams) == 0 {
		return nil, fmt.Errorf("%w: trace has no stream class", errs.ErrInvalidSchema)
	}

	if len(t.streams) > 1 {
		if t.packetHeader == nil {
			return nil, fmt.Errorf("%w: %d stream classes but no packet header", errs.ErrInvalidSchema, len(t.streams))
		}
		if _, ok := t.packetHeader.FieldByName(t.names.StreamClassID); !ok {
			return nil, fmt.Errorf("%w: %d stream classes but packet header has no %q field",
				errs.ErrInvalidSchema, len(t.streams), t.names.StreamClassID)
		}
	}

	return t, nil
}

// WithUUID sets the trace UUID that packet headers are checked against.
func WithUUID(uuid [16]byte) TraceOption {
	return options.NoError(func(t *Trace) {
		t.uuid = uuid
		t.hasUUID = true
	})
}

// WithTraceByteOrder sets the byte order used by nodes declaring none.
func WithTraceByteOrder(order format.ByteOrder) TraceOption {
	return options.New(func(t *Trace) error {
		switch order {
		case format.LittleEndian, format.BigEndian:
			t.order = order
			return nil
		default:
			return fmt.Errorf("invalid trace byte order: %v", order)
		}
	})
}

// WithPacketHeader sets the packet header type.
func WithPacketHeader(s *Struct) TraceOption {
	return options.NoError(func(t *Trace) {
		t.packetHeader = s
	})
}

// WithStreamClass registers a stream class.
func WithStreamClass(sc *StreamClass) TraceOption {
	return options.New(func(t *Trace) error {
		if sc == nil {
			return fmt.Errorf("nil stream class")
		}
		if _, dup := t.streams[sc.id]; dup {
			return fmt.Errorf("duplicate stream class id %d", sc.id)
		}
		t.streams[sc.id] = sc

		return nil
	})
}

// WithFieldNames overrides the well-known field names.
func WithFieldNames(names FieldNames) TraceOption {
	return options.NoError(func(t *Trace) {
		t.names = names
	})
}

// UUID returns the trace UUID, if one was declared.
func (t *Trace) UUID() ([16]byte, bool)      { return t.uuid, t.hasUUID }
func (t *Trace) ByteOrder() format.ByteOrder { return t.order }
func (t *Trace) PacketHeader() *Struct       { return t.packetHeader }
func (t *Trace) FieldNames() FieldNames      { return t.names }

// StreamClass returns the stream class registered under id.
func (t *Trace) StreamClass(id uint64) (*StreamClass, bool) {
	sc, ok := t.streams[id]
	return sc, ok
}

// StreamClasses returns all stream classes ordered by id.
func (t *Trace) StreamClasses() []*StreamClass {
	ids := slices.Sorted(maps.Keys(t.streams))
	out := make([]*StreamClass, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.streams[id])
	}

	return out
}

// DefaultStreamClass returns the only stream class when exactly one exists.
func (t *Trace) DefaultStreamClass() (*StreamClass, bool) {
	if len(t.streams) != 1 {
		return nil, false
	}
	for _, sc := range t.streams {
		return sc, true
	}

	return nil, false
}

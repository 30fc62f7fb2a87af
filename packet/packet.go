package packet

import "github.com/arloliu/ctfdec/value"

// Packet is one decoded data packet.
type Packet struct {
	// Offset is the byte offset of the packet within its stream.
	Offset int64

	Header  *value.Struct // nil when the trace declares no packet header
	Context *value.Struct // nil when the stream class declares no packet context

	StreamClassID uint64
	StreamID      uint64
	HasStreamID   bool

	// ContentBits and TotalBits are measured from the start of the packet.
	ContentBits int64
	TotalBits   int64

	BeginTimestamp  uint64
	EndTimestamp    uint64
	HasTimestamps   bool
	DiscardedEvents uint64
	SequenceNumber  uint64
	HasSequence     bool

	Events []EventRecord
}

// Size returns the number of bytes the packet occupies in its stream.
func (p *Packet) Size() int64 {
	return p.TotalBits / 8
}

// EventRecord is one decoded event.
type EventRecord struct {
	ClassID uint64
	Name    string

	// Timestamp is the event time in clock cycles, extended to 64 bits
	// against the previous timestamp when the header field is narrower.
	Timestamp    uint64
	HasTimestamp bool

	Header          *value.Struct
	CommonContext   *value.Struct
	SpecificContext *value.Struct
	Payload         *value.Struct
}

// clock extends narrow timestamp fields to 64 bits. A field of n bits holds
// the low n bits of the clock; a value below the previous low bits means the
// counter wrapped.
type clock struct {
	value uint64
}

func (c *clock) update(v uint64, bits int) uint64 {
	if bits <= 0 || bits >= 64 {
		c.value = v
		return v
	}

	mask := uint64(1)<<bits - 1
	v &= mask
	next := c.value&^mask | v
	if v < c.value&mask {
		next += mask + 1
	}
	c.value = next

	return next
}

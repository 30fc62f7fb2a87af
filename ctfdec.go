// Package ctfdec decodes Common Trace Format binary streams driven by a
// schema (type tree).
//
// The schema describes the layout of packet headers, packet contexts, event
// headers and event payloads. Given the schema and the raw bytes of a data
// stream, ctfdec produces structured packets and events: bit-packed integers,
// IEEE floats, LEB128 integers, strings, arrays and selector-driven variants.
//
// # Core Features
//
//   - Bit-exact integer decoding in both CTF bit orders
//   - Dynamic array lengths, string lengths and variant selectors resolved
//     from earlier fields, relative or from a named scope root
//   - Binary metadata packet framing (magic trial in both byte orders)
//   - Event timestamp clock extension across packets
//   - Concurrent multi-stream reading (package trace)
//   - Transparent decompression of archived stream files (package compress)
//
// # Basic Usage
//
// Loading a schema and decoding a stream:
//
//	import "github.com/arloliu/ctfdec"
//
//	tr, _ := ctfdec.LoadSchema("trace.yaml")
//	packets, _ := ctfdec.DecodeStream(tr, data)
//	for _, p := range packets {
//	    for _, ev := range p.Events {
//	        fmt.Println(ev.Name, ev.Payload)
//	    }
//	}
//
// Decoding a single value against a hand-built type:
//
//	u32 := schema.Must(schema.NewInteger(32, schema.WithByteOrder(format.BigEndian)))
//	v, _ := ctfdec.DecodeValue([]byte{0xde, 0xad, 0xbe, 0xef}, u32)
//	fmt.Println(v) // 3735928559
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the packet,
// decode and schema packages, simplifying the most common use cases. For
// fine-grained control use those packages directly.
package ctfdec

import (
	"fmt"
	"os"

	"github.com/arloliu/ctfdec/bitio"
	"github.com/arloliu/ctfdec/decode"
	"github.com/arloliu/ctfdec/packet"
	"github.com/arloliu/ctfdec/schema"
	"github.com/arloliu/ctfdec/value"
)

var schemas = schema.NewRegistry()

// LoadSchema loads a YAML schema file. Files with identical content share
// one immutable type tree for the lifetime of the process.
func LoadSchema(path string) (*schema.Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return ParseSchema(data)
}

// ParseSchema builds a type tree from a YAML schema, reusing the cached tree
// when the same text was parsed before.
func ParseSchema(data []byte) (*schema.Trace, error) {
	return schemas.GetOrBuild(data, schema.LoadYAML)
}

// ReadMetadata returns the metadata text of a metadata stream, binary
// packetized or plain text, and the trace UUID carried by its packets.
func ReadMetadata(data []byte) ([]byte, [16]byte, error) {
	return packet.ReadMetadataStream(data)
}

// NewPacketDecoder creates a packet decoder for tr.
func NewPacketDecoder(tr *schema.Trace, opts ...decode.Option) (*packet.Decoder, error) {
	return packet.NewDecoder(tr, opts...)
}

// DecodePacket decodes the single packet at byte offset within data.
func DecodePacket(tr *schema.Trace, data []byte, offset int64, opts ...decode.Option) (*packet.Packet, error) {
	d, err := packet.NewDecoder(tr, opts...)
	if err != nil {
		return nil, err
	}

	return d.DecodePacket(data, offset)
}

// DecodeStream decodes every packet of a data stream in order.
func DecodeStream(tr *schema.Trace, data []byte, opts ...decode.Option) ([]*packet.Packet, error) {
	d, err := packet.NewDecoder(tr, opts...)
	if err != nil {
		return nil, err
	}

	var packets []*packet.Packet
	for p, err := range d.NewStreamDecoder(data).All() {
		if err != nil {
			return packets, err
		}
		packets = append(packets, p)
	}

	return packets, nil
}

// DecodeValue decodes one value of type n from the start of data. Nodes
// without a byte order are read little-endian unless opts say otherwise.
// Field locations can only resolve against fields decoded within n.
func DecodeValue(data []byte, n schema.Node, opts ...decode.Option) (value.Value, error) {
	d, err := decode.NewDecoder(opts...)
	if err != nil {
		return nil, err
	}

	return d.Decode(bitio.NewCursor(data), n, decode.NewScope())
}

// Package packet decodes CTF metadata packets and data packets.
//
// A data stream is a sequence of packets. Each packet has a schema-defined
// header and context followed by event records up to the packet's content
// size, then padding up to its total size. Padding is never read.
//
// Decoding a packet is synchronous and all-or-nothing: on error no partial
// Packet is returned. Decoder is safe for concurrent use; each call owns its
// own cursor and scope and only reads the shared schema.
//
// Reading every packet of a stream:
//
//	dec, err := packet.NewDecoder(trace)
//	if err != nil {
//	    return err
//	}
//	for p, err := range dec.NewStreamDecoder(data).All() {
//	    if err != nil {
//	        return err
//	    }
//	    for _, ev := range p.Events {
//	        fmt.Println(ev.Name, ev.Payload)
//	    }
//	}
package packet

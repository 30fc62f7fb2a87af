package packet

import (
	"errors"
	"io"
	"iter"
)

// StreamDecoder pulls packets from one data stream in order. It carries the
// event clock from packet to packet.
//
// A StreamDecoder is not safe for concurrent use.
type StreamDecoder struct {
	d      *Decoder
	data   []byte
	offset int64
	clk    clock
	err    error
}

// NewStreamDecoder creates a decoder over a complete data stream.
func (d *Decoder) NewStreamDecoder(data []byte) *StreamDecoder {
	return &StreamDecoder{d: d, data: data}
}

// Offset returns the byte offset of the next packet.
func (s *StreamDecoder) Offset() int64 {
	return s.offset
}

// Next decodes the next packet. It returns io.EOF after the last packet.
// After a decode error the stream position is unknown, so every later call
// returns the same error.
func (s *StreamDecoder) Next() (*Packet, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.offset >= int64(len(s.data)) {
		return nil, io.EOF
	}

	p, err := s.d.decodePacket(s.data, s.offset, &s.clk)
	if err != nil {
		s.err = err
		return nil, err
	}
	s.offset += p.Size()

	return p, nil
}

// All iterates over the remaining packets. Iteration ends after the last
// packet or after the first error, which is yielded with a nil packet.
func (s *StreamDecoder) All() iter.Seq2[*Packet, error] {
	return func(yield func(*Packet, error) bool) {
		for {
			p, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}

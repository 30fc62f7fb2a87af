package trace

import (
	"context"

	"github.com/arloliu/ctfdec/packet"
)

// Sink consumes decoded packets. WritePacket is called concurrently for
// different streams and must be safe for concurrent use. Returning an error
// stops the whole read.
type Sink interface {
	WritePacket(ctx context.Context, stream string, p *packet.Packet) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, stream string, p *packet.Packet) error

// WritePacket calls f.
func (f SinkFunc) WritePacket(ctx context.Context, stream string, p *packet.Packet) error {
	return f(ctx, stream, p)
}

// Package trace reads the data streams of one trace concurrently.
//
// A trace usually consists of several stream files, one per CPU or channel.
// Streams are independent of each other: every stream carries its own clock
// and its packets must be decoded in order. Reader therefore runs one
// packet.StreamDecoder per stream in its own goroutine, all sharing the same
// immutable *schema.Trace.
//
// Decoded packets are handed to a Sink as they are produced. The Sink is
// called from several goroutines at once; packets of one stream arrive in
// stream order, packets of different streams interleave arbitrarily.
//
// # Usage
//
//	streams, err := trace.LoadStreams("trace/channel0_0.zst", "trace/channel0_1.zst")
//	if err != nil {
//	    return err
//	}
//
//	r, err := trace.NewReader(tr, trace.WithWorkers(4))
//	if err != nil {
//	    return err
//	}
//
//	stats, err := r.Read(ctx, streams, trace.SinkFunc(
//	    func(ctx context.Context, stream string, p *packet.Packet) error {
//	        // consume p.Events
//	        return nil
//	    }))
//
// # Error Handling
//
// By default the first decode error in any stream cancels all other streams
// and is returned from Read. With WithSkipCorruptPackets(true) a decode error
// is logged and only the failing stream stops; packets decoded before the
// error have already been delivered.
package trace

package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/ctfdec/decode"
	"github.com/arloliu/ctfdec/internal/options"
	"github.com/arloliu/ctfdec/packet"
	"github.com/arloliu/ctfdec/schema"
)

// Reader decodes the streams of one trace. A Reader holds no per-read state
// and may be used for several reads, also concurrently.
type Reader struct {
	dec         *packet.Decoder
	log         *logrus.Entry
	workers     int
	skipCorrupt bool
	decodeOpts  []decode.Option
}

// Stats summarizes one Read.
type Stats struct {
	// Streams counts streams decoded to the end.
	Streams int
	// CorruptStreams counts streams abandoned after a decode error.
	CorruptStreams int
	Packets        int
	Events         int
}

type counters struct {
	streams atomic.Int64
	corrupt atomic.Int64
	packets atomic.Int64
	events  atomic.Int64
}

func (c *counters) stats() Stats {
	return Stats{
		Streams:        int(c.streams.Load()),
		CorruptStreams: int(c.corrupt.Load()),
		Packets:        int(c.packets.Load()),
		Events:         int(c.events.Load()),
	}
}

// NewReader creates a Reader for tr.
func NewReader(tr *schema.Trace, opts ...Option) (*Reader, error) {
	l := logrus.New()
	l.SetOutput(io.Discard)

	r := &Reader{log: logrus.NewEntry(l)}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	dec, err := packet.NewDecoder(tr, r.decodeOpts...)
	if err != nil {
		return nil, err
	}
	r.dec = dec

	return r, nil
}

// Read decodes all streams and delivers their packets to sink. The context
// is checked between packets; cancellation stops every stream and returns
// the context error.
func (r *Reader) Read(ctx context.Context, streams []Stream, sink Sink) (Stats, error) {
	var c counters

	if sink == nil {
		return c.stats(), errors.New("trace: nil sink")
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.workers > 0 {
		g.SetLimit(r.workers)
	}

	for _, s := range streams {
		g.Go(func() error {
			return r.readStream(gctx, s, sink, &c)
		})
	}

	err := g.Wait()

	return c.stats(), err
}

func (r *Reader) readStream(ctx context.Context, s Stream, sink Sink, c *counters) error {
	log := r.log.WithField("stream", s.Name)
	sd := r.dec.NewStreamDecoder(s.Data)

	var n int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset := sd.Offset()
		p, err := sd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			entry := log.WithFields(logrus.Fields{"packet": n, "offset": offset}).WithError(err)
			if r.skipCorrupt {
				entry.Warn("corrupt packet, abandoning stream")
				c.corrupt.Add(1)

				return nil
			}
			entry.Error("packet decode failed")

			return fmt.Errorf("stream %s: %w", s.Name, err)
		}

		if err := sink.WritePacket(ctx, s.Name, p); err != nil {
			return fmt.Errorf("stream %s: sink: %w", s.Name, err)
		}

		n++
		c.packets.Add(1)
		c.events.Add(int64(len(p.Events)))
	}

	c.streams.Add(1)
	log.WithField("packets", n).Debug("stream decoded")

	return nil
}

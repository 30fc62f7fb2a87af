package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/arloliu/ctfdec/internal/pool"
	"github.com/arloliu/ctfdec/packet"
	"github.com/arloliu/ctfdec/value"
)

// printer writes decoded events as text lines or JSON lines. Events of one
// packet are rendered first and written together.
type printer struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{w: w, json: format == "json"}
}

type jsonEvent struct {
	Stream          string  `json:"stream"`
	PacketOffset    int64   `json:"packet_offset"`
	Index           int     `json:"index"`
	ClassID         uint64  `json:"class_id"`
	Name            string  `json:"name"`
	Timestamp       *uint64 `json:"timestamp,omitempty"`
	Header          any     `json:"header,omitempty"`
	CommonContext   any     `json:"common_context,omitempty"`
	SpecificContext any     `json:"specific_context,omitempty"`
	Payload         any     `json:"payload"`
}

func (p *printer) WritePacket(_ context.Context, stream string, pk *packet.Packet) error {
	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	enc := json.NewEncoder(buf)
	for i, ev := range pk.Events {
		if p.json {
			if err := enc.Encode(toJSON(stream, pk, i, ev)); err != nil {
				return err
			}
			continue
		}
		writeText(buf, stream, pk, i, ev)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := buf.WriteTo(p.w)

	return err
}

func writeText(buf *pool.Buffer, stream string, pk *packet.Packet, i int, ev packet.EventRecord) {
	ts := "-"
	if ev.HasTimestamp {
		ts = strconv.FormatUint(ev.Timestamp, 10)
	}

	fmt.Fprintf(buf, "[%s] packet@%d #%d %s ts=%s", stream, pk.Offset, i, ev.Name, ts)
	if ev.SpecificContext != nil {
		fmt.Fprintf(buf, " context=%s", ev.SpecificContext)
	}
	if ev.Payload != nil {
		fmt.Fprintf(buf, " payload=%s", ev.Payload)
	}
	buf.WriteByte('\n')
}

func toJSON(stream string, pk *packet.Packet, i int, ev packet.EventRecord) jsonEvent {
	out := jsonEvent{
		Stream:          stream,
		PacketOffset:    pk.Offset,
		Index:           i,
		ClassID:         ev.ClassID,
		Name:            ev.Name,
		Header:          native(ev.Header),
		CommonContext:   native(ev.CommonContext),
		SpecificContext: native(ev.SpecificContext),
		Payload:         native(ev.Payload),
	}
	if ev.HasTimestamp {
		ts := ev.Timestamp
		out.Timestamp = &ts
	}

	return out
}

func native(s *value.Struct) any {
	if s == nil {
		return nil
	}

	return value.Native(s)
}

package trace

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/ctfdec/decode"
	"github.com/arloliu/ctfdec/internal/options"
)

// Option configures a Reader.
type Option = options.Option[*Reader]

// WithWorkers limits the number of streams decoded at the same time.
// Zero means one goroutine per stream.
func WithWorkers(n int) Option {
	return options.New(func(r *Reader) error {
		if n < 0 {
			return errors.New("trace: worker count must not be negative")
		}
		r.workers = n

		return nil
	})
}

// WithSkipCorruptPackets selects the recovery policy for decode errors.
// When enabled, a stream that fails to decode is logged and abandoned while
// the other streams continue.
func WithSkipCorruptPackets(skip bool) Option {
	return options.NoError(func(r *Reader) {
		r.skipCorrupt = skip
	})
}

// WithLogger sets the log entry used for stream progress and decode errors.
// The reader logs nothing by default.
func WithLogger(entry *logrus.Entry) Option {
	return options.New(func(r *Reader) error {
		if entry == nil {
			return errors.New("trace: nil logger")
		}
		r.log = entry

		return nil
	})
}

// WithDecodeOptions passes value decoder limits to the packet decoder.
func WithDecodeOptions(opts ...decode.Option) Option {
	return options.NoError(func(r *Reader) {
		r.decodeOpts = append(r.decodeOpts, opts...)
	})
}

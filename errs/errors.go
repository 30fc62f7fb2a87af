// Package errs defines the sentinel errors returned by ctfdec.
//
// Every decode step surfaces one of these kinds immediately. Callers should
// match with errors.Is, since most errors are wrapped with offset and schema
// path context (see DecodeError).
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Bit cursor errors.
var (
	// ErrOutOfBounds is returned when a read needs more bits than remain.
	ErrOutOfBounds = errors.New("read out of bounds")
	// ErrMalformedVarint is returned when a LEB128 value does not terminate within 10 bytes.
	ErrMalformedVarint = errors.New("malformed LEB128 varint")
)

// Packet framing errors.
var (
	ErrInvalidHeaderSize         = errors.New("invalid header size")
	ErrInvalidMagicNumber        = errors.New("invalid magic number")
	ErrUnsupportedMetadataPacket = errors.New("unsupported metadata packet")
	ErrSizeInvariantViolation    = errors.New("packet size invariant violated")
	ErrEventRecordOverrun        = errors.New("event record overruns packet content")
	ErrUUIDMismatch              = errors.New("trace UUID mismatch")
	ErrUnknownStreamClass        = errors.New("unknown stream class")
	ErrUnknownEventClass         = errors.New("unknown event class")
)

// Value decoding errors.
var (
	ErrUnresolvedFieldLocation  = errors.New("unresolved field location")
	ErrUnmatchedVariantSelector = errors.New("variant selector matches no case")
	ErrUnsupportedFloatWidth    = errors.New("unsupported floating point width")
	ErrMaxDepthExceeded         = errors.New("maximum type nesting depth exceeded")
	ErrArrayTooLong             = errors.New("array length exceeds limit")
)

// Schema errors.
var (
	// ErrInvalidSchema is returned when a type tree fails structural validation.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrHashCollision is returned when two different metadata texts share a fingerprint.
	ErrHashCollision = errors.New("metadata fingerprint collision")
)

// DecodeError annotates a decode failure with the bit offset and the schema
// path being decoded when it happened.
type DecodeError struct {
	// Offset is the bit offset of the cursor, relative to the start of the packet.
	Offset int64
	// Path is the dotted schema path, e.g. "event.payload.items[2].len".
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Path != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Path)
	}
	fmt.Fprintf(&sb, " (bit offset %d, byte %d)", e.Offset, e.Offset/8)

	return sb.String()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// AtOffset wraps err in a DecodeError unless it already carries one.
func AtOffset(err error, offset int64, path string) error {
	if err == nil {
		return nil
	}

	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}

	return &DecodeError{Offset: offset, Path: path, Err: err}
}

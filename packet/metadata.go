package packet

import (
	"bytes"
	"fmt"

	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/section"
)

// ReadMetadataPacket reads one binary metadata packet from the start of data.
//
// Returns:
//   - section.MetadataHeader: the validated header
//   - []byte: the metadata text chunk, aliasing data
//   - int: the number of bytes the packet occupies, padding included
//   - error: a header error, or ErrOutOfBounds if data is shorter than the packet
func ReadMetadataPacket(data []byte) (section.MetadataHeader, []byte, int, error) {
	h, err := section.ParseMetadataHeader(data)
	if err != nil {
		return section.MetadataHeader{}, nil, 0, err
	}

	size := h.PacketSize()
	if size > len(data) {
		return section.MetadataHeader{}, nil, 0, fmt.Errorf("%w: metadata packet of %d bytes, %d available",
			errs.ErrOutOfBounds, size, len(data))
	}

	text := data[section.MetadataHeaderSize : section.MetadataHeaderSize+h.TextSize()]

	return h, text, size, nil
}

// ReadMetadataStream returns the metadata text of a whole metadata stream.
//
// Plain text metadata, starting with "/* CTF", is returned unchanged with a
// zero UUID. Otherwise every packet is read and their text chunks are
// concatenated; all packets must carry the UUID of the first.
func ReadMetadataStream(data []byte) ([]byte, [16]byte, error) {
	var uuid [16]byte

	if bytes.HasPrefix(data, []byte(section.PlainTextPrefix)) {
		return data, uuid, nil
	}

	var text bytes.Buffer
	for off, i := 0, 0; off < len(data); i++ {
		h, chunk, n, err := ReadMetadataPacket(data[off:])
		if err != nil {
			return nil, uuid, fmt.Errorf("metadata packet %d at byte %d: %w", i, off, err)
		}

		if i == 0 {
			uuid = h.UUID
		} else if h.UUID != uuid {
			return nil, uuid, fmt.Errorf("%w: metadata packet %d at byte %d", errs.ErrUUIDMismatch, i, off)
		}

		text.Write(chunk)
		off += n
	}

	return text.Bytes(), uuid, nil
}

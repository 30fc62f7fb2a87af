package section

import (
	"fmt"

	"github.com/arloliu/ctfdec/endian"
	"github.com/arloliu/ctfdec/errs"
	"github.com/arloliu/ctfdec/format"
)

// MetadataHeader is the fixed header of a binary metadata packet.
type MetadataHeader struct {
	Magic             uint32   // byte offset 0-3
	UUID              [16]byte // byte offset 4-19
	Checksum          uint32   // byte offset 20-23, ignored
	ContentSizeBits   uint32   // byte offset 24-27
	TotalSizeBits     uint32   // byte offset 28-31
	CompressionScheme uint8    // byte offset 32
	EncryptionScheme  uint8    // byte offset 33
	ContentChecksum   uint8    // byte offset 34
	Major             uint8    // byte offset 35
	Minor             uint8    // byte offset 36
	Reserved          [3]byte  // byte offset 37-39
	HeaderSizeBits    uint32   // byte offset 40-43

	// ByteOrder is the order detected from the magic number.
	ByteOrder format.ByteOrder
}

// NewMetadataHeader creates a valid header for a packet carrying textLen
// bytes of metadata text padded to totalLen bytes. It is mostly useful for
// building test fixtures.
func NewMetadataHeader(uuid [16]byte, textLen, totalLen int, order format.ByteOrder) *MetadataHeader {
	content := (MetadataHeaderSize + textLen) * 8

	return &MetadataHeader{
		Magic:           MetadataMagic,
		UUID:            uuid,
		ContentSizeBits: uint32(content),                  //nolint:gosec
		TotalSizeBits:   uint32(max(content, totalLen*8)), //nolint:gosec
		Major:           MetadataMajor,
		Minor:           MetadataMinor,
		HeaderSizeBits:  MetadataHeaderSizeBits,
		ByteOrder:       order.Resolve(format.LittleEndian),
	}
}

// Parse parses and validates the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 44 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 44 bytes, ErrInvalidMagicNumber
//     if neither byte order matches, or a Validate error
func (h *MetadataHeader) Parse(data []byte) error {
	if len(data) != MetadataHeaderSize {
		return fmt.Errorf("%w: metadata header needs %d bytes, got %d",
			errs.ErrInvalidHeaderSize, MetadataHeaderSize, len(data))
	}

	order, ok := endian.DetectMagic32(data[offMagic:], MetadataMagic)
	if !ok {
		return fmt.Errorf("%w: %w: % x", errs.ErrUnsupportedMetadataPacket, errs.ErrInvalidMagicNumber, data[offMagic:offMagic+4])
	}

	engine := endian.Engine(order)

	h.ByteOrder = order
	h.Magic = engine.Uint32(data[offMagic:])
	copy(h.UUID[:], data[offUUID:offUUID+16])
	h.Checksum = engine.Uint32(data[offChecksum:])
	h.ContentSizeBits = engine.Uint32(data[offContentSize:])
	h.TotalSizeBits = engine.Uint32(data[offTotalSize:])
	h.CompressionScheme = data[offCompression]
	h.EncryptionScheme = data[offEncryption]
	h.ContentChecksum = data[offContentChecksum]
	h.Major = data[offMajor]
	h.Minor = data[offMinor]
	copy(h.Reserved[:], data[offReserved:offReserved+metadataReservedLen])
	h.HeaderSizeBits = engine.Uint32(data[offHeaderSize:])

	return h.Validate()
}

// Validate checks the header against the supported packet format.
//
// Returns:
//   - error: ErrUnsupportedMetadataPacket for nonzero schemes, wrong version or
//     header size; ErrSizeInvariantViolation for inconsistent sizes
func (h *MetadataHeader) Validate() error {
	switch {
	case h.CompressionScheme != 0:
		return fmt.Errorf("%w: compression scheme %d", errs.ErrUnsupportedMetadataPacket, h.CompressionScheme)
	case h.EncryptionScheme != 0:
		return fmt.Errorf("%w: encryption scheme %d", errs.ErrUnsupportedMetadataPacket, h.EncryptionScheme)
	case h.ContentChecksum != 0:
		return fmt.Errorf("%w: content checksum scheme %d", errs.ErrUnsupportedMetadataPacket, h.ContentChecksum)
	case h.HeaderSizeBits != MetadataHeaderSizeBits:
		return fmt.Errorf("%w: header size %d bits", errs.ErrUnsupportedMetadataPacket, h.HeaderSizeBits)
	case h.Major != MetadataMajor || h.Minor != MetadataMinor:
		return fmt.Errorf("%w: version %d.%d", errs.ErrUnsupportedMetadataPacket, h.Major, h.Minor)
	}

	switch {
	case h.ContentSizeBits%8 != 0 || h.TotalSizeBits%8 != 0:
		return fmt.Errorf("%w: content %d bits, total %d bits, not byte multiples",
			errs.ErrSizeInvariantViolation, h.ContentSizeBits, h.TotalSizeBits)
	case h.ContentSizeBits > h.TotalSizeBits:
		return fmt.Errorf("%w: content %d bits exceeds total %d bits",
			errs.ErrSizeInvariantViolation, h.ContentSizeBits, h.TotalSizeBits)
	case h.ContentSizeBits < h.HeaderSizeBits:
		return fmt.Errorf("%w: content %d bits is smaller than the header",
			errs.ErrSizeInvariantViolation, h.ContentSizeBits)
	}

	return nil
}

// TextSize returns the number of metadata text bytes following the header.
func (h *MetadataHeader) TextSize() int {
	return int(h.ContentSizeBits-h.HeaderSizeBits) / 8
}

// PacketSize returns the number of bytes the whole packet occupies.
func (h *MetadataHeader) PacketSize() int {
	return int(h.TotalSizeBits / 8)
}

// Bytes serializes the header in its ByteOrder.
func (h *MetadataHeader) Bytes() []byte {
	b := make([]byte, MetadataHeaderSize)
	engine := endian.Engine(h.ByteOrder)

	engine.PutUint32(b[offMagic:], h.Magic)
	copy(b[offUUID:], h.UUID[:])
	engine.PutUint32(b[offChecksum:], h.Checksum)
	engine.PutUint32(b[offContentSize:], h.ContentSizeBits)
	engine.PutUint32(b[offTotalSize:], h.TotalSizeBits)
	b[offCompression] = h.CompressionScheme
	b[offEncryption] = h.EncryptionScheme
	b[offContentChecksum] = h.ContentChecksum
	b[offMajor] = h.Major
	b[offMinor] = h.Minor
	copy(b[offReserved:], h.Reserved[:])
	engine.PutUint32(b[offHeaderSize:], h.HeaderSizeBits)

	return b
}

// ParseMetadataHeader parses a MetadataHeader from the start of data.
//
// Parameters:
//   - data: Byte slice starting with a header (must be at least 44 bytes)
//
// Returns:
//   - MetadataHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize or a Parse error
func ParseMetadataHeader(data []byte) (MetadataHeader, error) {
	if len(data) < MetadataHeaderSize {
		return MetadataHeader{}, fmt.Errorf("%w: metadata header needs %d bytes, got %d",
			errs.ErrInvalidHeaderSize, MetadataHeaderSize, len(data))
	}

	h := MetadataHeader{}
	if err := h.Parse(data[:MetadataHeaderSize]); err != nil {
		return MetadataHeader{}, err
	}

	return h, nil
}

// IsMetadataPacket reports whether data starts with the metadata magic in
// either byte order.
func IsMetadataPacket(data []byte) bool {
	_, ok := endian.DetectMagic32(data, MetadataMagic)
	return ok
}

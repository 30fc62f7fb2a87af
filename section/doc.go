// Package section defines the fixed binary structures that frame CTF
// metadata streams.
//
// # Metadata Packet Layout
//
// A binary metadata stream is a sequence of packets. Each packet starts with
// a fixed 44-byte header followed by a chunk of metadata text and padding:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (44 bytes, fixed)                                │
//	├─────────────────────────────────────────────────────────┤
//	│ Metadata text ((content_size - 352) / 8 bytes)          │
//	├─────────────────────────────────────────────────────────┤
//	│ Padding (up to total_size / 8 bytes, never read)        │
//	└─────────────────────────────────────────────────────────┘
//
// Header fields:
//
//	Bytes  | Field              | Type     | Description
//	-------|--------------------|----------|----------------------------------
//	0-3    | Magic              | uint32   | 0x75d11d57 in the stream byte order
//	4-19   | UUID               | [16]byte | Trace UUID
//	20-23  | Checksum           | uint32   | Ignored
//	24-27  | ContentSizeBits    | uint32   | Header plus text, in bits
//	28-31  | TotalSizeBits      | uint32   | Content plus padding, in bits
//	32     | CompressionScheme  | uint8    | Must be 0
//	33     | EncryptionScheme   | uint8    | Must be 0
//	34     | ContentChecksum    | uint8    | Must be 0
//	35     | Major              | uint8    | Must be 2
//	36     | Minor              | uint8    | Must be 0
//	37-39  | Reserved           | [3]byte  |
//	40-43  | HeaderSizeBits     | uint32   | Must be 352
//
// # Byte Order
//
// The header declares no byte order. It is discovered by testing the first
// four bytes against MetadataMagic in both orders; all other multi-byte
// fields then use the order that matched.
//
// Parsing a header:
//
//	h, err := section.ParseMetadataHeader(data)
//	if err != nil {
//	    return err
//	}
//	text := data[section.MetadataHeaderSize : section.MetadataHeaderSize+h.TextSize()]
package section

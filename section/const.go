package section

// Metadata packet magic and layout.
const (
	MetadataMagic uint32 = 0x75d11d57 // MetadataMagic starts every binary metadata packet.

	MetadataMajor = 2 // MetadataMajor is the only supported packet format major version.
	MetadataMinor = 0 // MetadataMinor is the only supported packet format minor version.

	MetadataHeaderSize     = 44                     // fixed header size in bytes
	MetadataHeaderSizeBits = MetadataHeaderSize * 8 // header_size field value, 352
)

// byte offsets of metadata header fields
const (
	offMagic            = 0
	offUUID             = 4
	offChecksum         = 20
	offContentSize      = 24
	offTotalSize        = 28
	offCompression      = 32
	offEncryption       = 33
	offContentChecksum  = 34
	offMajor            = 35
	offMinor            = 36
	offReserved         = 37
	offHeaderSize       = 40
	metadataReservedLen = 3
)

// PlainTextPrefix starts metadata stored as plain text, without packet framing.
const PlainTextPrefix = "/* CTF"

package compress

// ZstdCodec reads and writes Zstandard frames, the format of ".zst" files
// produced by the zstd command line tool.
//
// The default build uses github.com/klauspost/compress/zstd with pooled
// decoders; see zstd_pure.go.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd codec.
//
// Example:
//
//	codec := NewZstdCodec()
//	data, err := codec.Decompress(archived)
//	if err != nil {
//		return err
//	}
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}

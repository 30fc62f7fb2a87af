// Package compress restores archived trace stream files.
//
// Trace streams are often archived with a general purpose compressor after
// capture. The decoder needs the raw packet bytes, so stream files are
// decompressed as a whole before packet decoding; the format is chosen by
// file extension.
//
// # Supported Formats
//
//	Extension | Type                   | Format
//	----------|------------------------|---------------------------------
//	.zst      | format.CompressionZstd | Zstandard frames
//	.s2       | format.CompressionS2   | S2 (and Snappy framed) stream
//	.lz4      | format.CompressionLZ4  | LZ4 frames
//	other     | format.CompressionNone | uncompressed
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	    NewReader(r io.Reader) (io.ReadCloser, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Usage
//
//	codec := compress.ForPath("channel0_0.zst")
//	data, err := codec.Decompress(archived)
//
// Streaming from a file:
//
//	rc, err := compress.ForPath(path).NewReader(f)
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
//	data, err := io.ReadAll(rc)
//
// # Build Tags
//
// Zstandard uses the pure Go github.com/klauspost/compress/zstd by default.
// Building with the nobuild tag swaps in the cgo based github.com/valyala/gozstd.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Zstd decoders
// and LZ4 writers are pooled internally.
package compress

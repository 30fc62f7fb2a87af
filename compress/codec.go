package compress

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/arloliu/ctfdec/format"
)

// Compressor compresses a whole stream file into its archived form.
type Compressor interface {
	// Compress returns the archived form of data. Input is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores an archived stream file.
//
// Implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress returns the original bytes of an archived file. It fails if
	// data is corrupted or was written by another algorithm.
	Decompress(data []byte) ([]byte, error)

	// NewReader wraps r so that reads return decompressed bytes.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec creates a Codec for the given compression type.
//
// Parameters:
//   - compressionType: Type of compression (None, Zstd, S2, or LZ4)
//
// Returns:
//   - Codec: codec instance for the specified type
//   - error: invalid compression type error
func CreateCodec(compressionType format.CompressionType) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	case format.CompressionS2:
		return NewS2Codec(), nil
	case format.CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid compression: %s", compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

var extensions = map[string]format.CompressionType{
	".zst":  format.CompressionZstd,
	".zstd": format.CompressionZstd,
	".s2":   format.CompressionS2,
	".lz4":  format.CompressionLZ4,
}

// TypeForPath returns the compression type implied by a file extension.
// Unknown extensions mean an uncompressed file.
func TypeForPath(path string) format.CompressionType {
	if t, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return t
	}

	return format.CompressionNone
}

// Extension returns the file extension written for a compression type, or
// "" for CompressionNone.
func Extension(t format.CompressionType) string {
	switch t {
	case format.CompressionZstd:
		return ".zst"
	case format.CompressionS2:
		return ".s2"
	case format.CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}

// ForPath returns the built-in codec for a file, chosen by its extension.
func ForPath(path string) Codec {
	codec, _ := GetCodec(TypeForPath(path))
	return codec
}

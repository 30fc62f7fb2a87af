//go:build nobuild

package compress

import (
	"bytes"
	"io"

	"github.com/valyala/gozstd"
)

// Compress writes data as a single Zstandard frame using libzstd.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 9), nil
}

func (c ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}

// NewReader decompresses r fully through libzstd.
func (c ZstdCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	out, err := c.Decompress(data)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(out)), nil
}

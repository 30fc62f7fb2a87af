package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/ctfdec/compress"
	"github.com/arloliu/ctfdec/format"
)

// Stream is the complete content of one data stream.
type Stream struct {
	// Name identifies the stream in logs and sink calls, usually the file name.
	Name string
	Data []byte
}

// LoadStream reads a stream file, decompressing it when its extension names
// an archive format (.zst, .s2, .lz4). The stream name is the file name
// without the archive extension.
func LoadStream(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stream{}, fmt.Errorf("failed to open stream file: %w", err)
	}
	defer f.Close()

	rc, err := compress.ForPath(path).NewReader(f)
	if err != nil {
		return Stream{}, fmt.Errorf("stream file %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Stream{}, fmt.Errorf("failed to read stream file %s: %w", path, err)
	}

	name := filepath.Base(path)
	if compress.TypeForPath(name) != format.CompressionNone {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return Stream{Name: name, Data: data}, nil
}

// LoadStreams loads every path with LoadStream.
func LoadStreams(paths ...string) ([]Stream, error) {
	streams := make([]Stream, 0, len(paths))
	for _, p := range paths {
		s, err := LoadStream(p)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}

	return streams, nil
}

// Package pool provides reusable byte buffers for rendering decoded records
// and compressing archives.
package pool

import (
	"io"
	"sync"
)

// Default buffer sizes.
const (
	RecordBufferDefaultSize   = 1024 * 4        // 4KiB
	RecordBufferMaxThreshold  = 1024 * 256      // 256KiB
	ArchiveBufferDefaultSize  = 1024 * 1024     // 1MiB
	ArchiveBufferMaxThreshold = 1024 * 1024 * 8 // 8MiB
)

// Buffer is an append-only byte buffer.
type Buffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewBuffer creates a Buffer with the given initial capacity.
func NewBuffer(defaultSize int) *Buffer {
	return &Buffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the buffered bytes. They alias the buffer until it is reset.
func (b *Buffer) Bytes() []byte {
	return b.B
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int {
	return len(b.B)
}

// Reset empties the buffer, keeping its memory.
func (b *Buffer) Reset() {
	b.B = b.B[:0]
}

// Write appends data. It never fails.
func (b *Buffer) Write(data []byte) (int, error) {
	b.B = append(b.B, data...)
	return len(data), nil
}

// WriteString appends s. It never fails.
func (b *Buffer) WriteString(s string) (int, error) {
	b.B = append(b.B, s...)
	return len(s), nil
}

// WriteByte appends c. It never fails.
func (b *Buffer) WriteByte(c byte) error {
	b.B = append(b.B, c)
	return nil
}

// WriteTo writes the buffered bytes to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.B)
	return int64(n), err
}

// BufferPool is a pool of Buffers. Buffers that grew beyond maxThreshold
// are dropped instead of being retained.
type BufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewBufferPool creates a pool of buffers of defaultSize initial capacity.
// A maxThreshold of zero retains buffers of any size.
func NewBufferPool(defaultSize int, maxThreshold int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get returns an empty buffer.
func (p *BufferPool) Get() *Buffer {
	b, _ := p.pool.Get().(*Buffer)
	return b
}

// Put returns b to the pool.
func (p *BufferPool) Put(b *Buffer) {
	if b == nil {
		return
	}
	if p.maxThreshold > 0 && cap(b.B) > p.maxThreshold {
		return
	}

	b.Reset()
	p.pool.Put(b)
}

var (
	recordPool  = NewBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
	archivePool = NewBufferPool(ArchiveBufferDefaultSize, ArchiveBufferMaxThreshold)
)

// GetRecordBuffer returns a buffer for rendering decoded records.
func GetRecordBuffer() *Buffer {
	return recordPool.Get()
}

// PutRecordBuffer returns a buffer obtained from GetRecordBuffer.
func PutRecordBuffer(b *Buffer) {
	recordPool.Put(b)
}

// GetArchiveBuffer returns a buffer for compressor output.
func GetArchiveBuffer() *Buffer {
	return archivePool.Get()
}

// PutArchiveBuffer returns a buffer obtained from GetArchiveBuffer.
func PutArchiveBuffer(b *Buffer) {
	archivePool.Put(b)
}

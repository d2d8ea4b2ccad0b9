package flashkv

import (
	"io"
)

var erasedBuf = make([]byte, 65536)

func init() {
	for i := range erasedBuf {
		erasedBuf[i] = ErasedByte
	}
}

type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

type offsetReadWriterAt struct {
	backing ReadWriterAt
	offset  int64
}

// NewOffsetReadWriterAt returns a view of backing shifted by offset.
func NewOffsetReadWriterAt(backing ReadWriterAt, offset int64) ReadWriterAt {
	return &offsetReadWriterAt{
		backing: backing,
		offset:  offset,
	}
}

func (o *offsetReadWriterAt) ReadAt(p []byte, off int64) (int, error) {
	return o.backing.ReadAt(p, off+o.offset)
}

func (o *offsetReadWriterAt) WriteAt(p []byte, off int64) (int, error) {
	return o.backing.WriteAt(p, off+o.offset)
}

// WriteErased fills [off, off+length) of w with the erased byte value.
func WriteErased(w io.WriterAt, off, length int64) (int64, error) {
	n := int64(0)
	for length > 0 {
		writeLen := len(erasedBuf)
		if int64(writeLen) > length {
			writeLen = int(length)
		}

		written, err := w.WriteAt(erasedBuf[:writeLen], off+n)
		n += int64(written)
		length -= int64(written)
		if err != nil {
			return n, err
		}
	}

	return n, nil
}

// MemBuffer is an in-memory ReadWriterAt, initialized to the erased
// value like a factory-fresh part.
type MemBuffer struct {
	buf []byte
}

func NewMemBuffer(size int64) *MemBuffer {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = ErasedByte
	}
	return &MemBuffer{buf: buf}
}

func (m *MemBuffer) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemBuffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.buf)) {
		return 0, io.ErrShortWrite
	}
	return copy(m.buf[off:], p), nil
}

package stream

import (
	"errors"
	"io"
)

var (
	errInvalidWhence    = errors.New("stream: invalid whence")
	errNegativePosition = errors.New("stream: negative position")
)

// Buffer is an in-memory Stream: the same random-access role
// github.com/orcaman/writerseeker.WriterSeeker plays for write-only
// passes, except Buffer also supports reading back through the same
// position cursor, which the matryoshka/dct/octanezip round-trip tests
// need since they encode and then immediately decode the same bytes.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer returns a Buffer seeded with initial (copied).
func NewBuffer(initial []byte) *Buffer {
	b := &Buffer{data: make([]byte, len(initial))}
	copy(b.data, initial)
	return b
}

func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	n := copy(b.data[b.pos:end], p)
	b.pos = end
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case io.SeekStart:
		newPos = offset
	case io.SeekCurrent:
		newPos = b.pos + offset
	case io.SeekEnd:
		newPos = int64(len(b.data)) + offset
	default:
		return 0, errInvalidWhence
	}
	if newPos < 0 {
		return 0, errNegativePosition
	}
	b.pos = newPos
	return newPos, nil
}

// Bytes returns the buffer's full contents regardless of cursor position.
func (b *Buffer) Bytes() []byte { return b.data }

// Package stream provides the byte-addressable random-access stream
// abstraction shared by the matryoshka, dct and octanezip codecs: an
// explicit position, absolute/relative seeking, and exact-length
// read/write. Every codec in this module is built against the Stream
// interface rather than *os.File directly, the same way
// distr1-distri/internal/squashfs builds its reader/writer against
// io.ReaderAt/io.WriteSeeker so that an in-memory Buffer (buffer.go) can
// stand in for a real file.
package stream

import (
	"io"

	"golang.org/x/xerrors"
)

// Stream is a byte-addressable random-access reader/writer.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
}

// ReadWriteSeeker is satisfied by *os.File and by the in-memory *Buffer.
type ReadWriteSeeker = Stream

// Position returns the current absolute offset.
func Position(s Stream) (int64, error) {
	return s.Seek(0, io.SeekCurrent)
}

// SeekAbsolute moves to an absolute offset from the start of the stream.
func SeekAbsolute(s Stream, offset int64) error {
	_, err := s.Seek(offset, io.SeekStart)
	return err
}

// SeekRelative moves by delta bytes from the current position.
func SeekRelative(s Stream, delta int64) error {
	_, err := s.Seek(delta, io.SeekCurrent)
	return err
}

// ReadExact reads exactly n bytes, failing with an error that wraps
// io.EOF if no byte was available, or io.ErrUnexpectedEOF if the stream
// is exhausted part-way.
func ReadExact(s Stream, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s, buf); err != nil {
		return nil, xerrors.Errorf("read_exact(%d): %w", n, err)
	}
	return buf, nil
}

// WriteAll writes every byte of b, failing on a short write.
func WriteAll(s Stream, b []byte) error {
	n, err := s.Write(b)
	if err != nil {
		return xerrors.Errorf("write_all: %w", err)
	}
	if n != len(b) {
		return xerrors.Errorf("write_all: short write: wrote %d of %d bytes", n, len(b))
	}
	return nil
}

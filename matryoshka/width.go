package matryoshka

import (
	"encoding/binary"
	"math"

	"github.com/distr1/octane/internal/stream"
)

// writeWidth writes the low (little-endian file) or high (big-endian
// file) width bytes of x's 4-byte representation — a length- or
// int-prefix narrowed to its minimal width, never a plain truncation.
// width is clamped to the 1..4 range the 2-bit size fields can express.
func writeWidth(w stream.Stream, endian Endian, x uint32, width int) error {
	if width < 1 {
		width = 1
	} else if width > 4 {
		width = 4
	}
	var buf [4]byte
	if endian == BigEndian {
		binary.BigEndian.PutUint32(buf[:], x)
		return stream.WriteAll(w, buf[4-width:])
	}
	binary.LittleEndian.PutUint32(buf[:], x)
	return stream.WriteAll(w, buf[:width])
}

// readWidth is the inverse of writeWidth: it reads width bytes and
// reconstitutes the full 4-byte value, zero-extending the bytes that were
// never on the wire.
func readWidth(r stream.Stream, endian Endian, width int) (uint32, error) {
	if width < 1 {
		width = 1
	} else if width > 4 {
		width = 4
	}
	b, err := stream.ReadExact(r, width)
	if err != nil {
		return 0, err
	}
	var buf [4]byte
	if endian == BigEndian {
		copy(buf[4-width:], b)
		return binary.BigEndian.Uint32(buf[:]), nil
	}
	copy(buf[:width], b)
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeU16(w stream.Stream, endian Endian, v uint16) error {
	var buf [2]byte
	if endian == BigEndian {
		binary.BigEndian.PutUint16(buf[:], v)
	} else {
		binary.LittleEndian.PutUint16(buf[:], v)
	}
	return stream.WriteAll(w, buf[:])
}

func readU16(r stream.Stream, endian Endian) (uint16, error) {
	b, err := stream.ReadExact(r, 2)
	if err != nil {
		return 0, err
	}
	if endian == BigEndian {
		return binary.BigEndian.Uint16(b), nil
	}
	return binary.LittleEndian.Uint16(b), nil
}

func writeU32(w stream.Stream, endian Endian, v uint32) error {
	var buf [4]byte
	if endian == BigEndian {
		binary.BigEndian.PutUint32(buf[:], v)
	} else {
		binary.LittleEndian.PutUint32(buf[:], v)
	}
	return stream.WriteAll(w, buf[:])
}

func readU32(r stream.Stream, endian Endian) (uint32, error) {
	b, err := stream.ReadExact(r, 4)
	if err != nil {
		return 0, err
	}
	if endian == BigEndian {
		return binary.BigEndian.Uint32(b), nil
	}
	return binary.LittleEndian.Uint32(b), nil
}

// writeFloat/readFloat carry the IEEE-754 bit pattern through unchanged,
// so NaN payloads round-trip exactly rather than being canonicalized.
func writeFloat(w stream.Stream, endian Endian, f float32) error {
	return writeU32(w, endian, math.Float32bits(f))
}

func readFloat(r stream.Stream, endian Endian) (float32, error) {
	v, err := readU32(r, endian)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

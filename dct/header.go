package dct

import (
	"encoding/binary"

	"golang.org/x/xerrors"
)

// header is the fixed 32-byte DCT file header. The whole file, including
// this header, is little-endian, unlike Matryoshka which is endian-
// tagged.
//
//	"DICT" | 0x2000 | initial_hash_value | line_offset | line_count | 0x00000001 | footer_offset | footer_count
type header struct {
	initialHashValue uint32
	lineOffset       uint32 // always the literal 19; see DESIGN.md
	lineCount        uint32
	footerOffset     uint32
	footerCount      uint32
}

const (
	headerSize       = 32
	headerVersion    = 0x2000
	headerLineOffset = 19
	headerUnknown    = 1

	lineEntrySize      = 12
	footerEntrySize    = 24
	footerSubEntrySize = 8
)

var magicDict = [4]byte{'D', 'I', 'C', 'T'}

// Load parses a 32-byte header out of b.
func (h *header) Load(b []byte) error {
	if len(b) < headerSize {
		return xerrors.Errorf("dct: header: %w: need %d bytes, got %d", ErrStructuralMismatch, headerSize, len(b))
	}
	if string(b[0:4]) != string(magicDict[:]) {
		return xerrors.Errorf("dct: header: %w", ErrInvalidMagic)
	}
	version := binary.LittleEndian.Uint32(b[4:8])
	if version != headerVersion {
		return xerrors.Errorf("dct: header: %w: version 0x%x", ErrInvalidMagic, version)
	}
	h.initialHashValue = binary.LittleEndian.Uint32(b[8:12])
	h.lineOffset = binary.LittleEndian.Uint32(b[12:16])
	h.lineCount = binary.LittleEndian.Uint32(b[16:20])
	unknown := binary.LittleEndian.Uint32(b[20:24])
	if unknown != headerUnknown {
		return xerrors.Errorf("dct: header: %w: expected constant 1 at offset 20, got %d", ErrStructuralMismatch, unknown)
	}
	h.footerOffset = binary.LittleEndian.Uint32(b[24:28])
	h.footerCount = binary.LittleEndian.Uint32(b[28:32])
	return nil
}

// Bytes serializes h to its 32-byte wire form.
func (h *header) Bytes() []byte {
	b := make([]byte, headerSize)
	copy(b[0:4], magicDict[:])
	binary.LittleEndian.PutUint32(b[4:8], headerVersion)
	binary.LittleEndian.PutUint32(b[8:12], h.initialHashValue)
	binary.LittleEndian.PutUint32(b[12:16], h.lineOffset)
	binary.LittleEndian.PutUint32(b[16:20], h.lineCount)
	binary.LittleEndian.PutUint32(b[20:24], headerUnknown)
	binary.LittleEndian.PutUint32(b[24:28], h.footerOffset)
	binary.LittleEndian.PutUint32(b[28:32], h.footerCount)
	return b
}

// Package matryoshka implements the hierarchical, endian-tagged,
// bit-packed binary tree codec used by Octane engine asset containers:
// magic/endian detection, a deduplicated string table, and a depth-coded
// node stream that reconstructs into an ordered Container tree.
package matryoshka

import (
	"bytes"

	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

var (
	magicLittle = [8]byte{0x29, 0x76, 0x01, 0x45, 0xCD, 0xCC, 0x8C, 0x3F}
	magicBig    = [8]byte{0x45, 0x01, 0x76, 0x29, 0x3F, 0x8C, 0xCC, 0xCD}
)

const (
	headerReservedSize = 4
	headerSizesSize    = 8 // string_table_size + data_tree_size
	headerPaddingSize  = 40
	headerFixedSize    = headerReservedSize + headerSizesSize + headerPaddingSize
)

// Decode reads a complete Matryoshka stream: magic, header, string table,
// and node stream, returning the reconstructed root Container and the
// endianness the stream was written in. r must be positioned at the
// start of the stream.
func Decode(r stream.Stream) (*Container, Endian, error) {
	return decodeFrom(r)
}

// decodeFrom is the lower-level stream entry point, exposed separately so
// callers that have already read other data out of a shared stream (e.g.
// an Octane ZIP entry body) can decode a DOM starting at the stream's
// current position rather than requiring a fresh reader. It assumes the caller
// has already positioned s at the start of a Matryoshka stream (which
// need not be file offset zero), and reads through the magic, header, string table and
// node tree exactly once, leaving s positioned just past the node tree.
func decodeFrom(s stream.Stream) (*Container, Endian, error) {
	magic, err := stream.ReadExact(s, 8)
	if err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: reading magic: %w", err)
	}
	var endian Endian
	switch {
	case bytes.Equal(magic, magicLittle[:]):
		endian = LittleEndian
	case bytes.Equal(magic, magicBig[:]):
		endian = BigEndian
	default:
		return nil, 0, xerrors.Errorf("matryoshka: %w", ErrInvalidMagic)
	}

	if err := stream.SeekRelative(s, headerReservedSize); err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: skipping reserved header bytes: %w", err)
	}
	stringTableSize, err := readU32(s, endian)
	if err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: reading string_table_size: %w", err)
	}
	dataTreeSize, err := readU32(s, endian)
	if err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: reading data_tree_size: %w", err)
	}
	if err := stream.SeekRelative(s, headerPaddingSize); err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: skipping header padding: %w", err)
	}

	strings_, err := readStringTable(s, int64(stringTableSize))
	if err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: reading string table: %w", err)
	}

	root, err := readNodeTree(s, endian, strings_, int64(dataTreeSize))
	if err != nil {
		return nil, 0, xerrors.Errorf("matryoshka: reading node tree: %w", err)
	}
	return root, endian, nil
}

// Encode writes root as a complete Matryoshka stream using endian. w must
// be positioned at the start of the stream; the header's two size fields
// are backpatched in place once the tree has been emitted, so w must
// support seeking backward.
func Encode(w stream.Stream, root *Container, endian Endian) error {
	return encodeTo(w, root, endian)
}

func encodeTo(s stream.Stream, root *Container, endian Endian) error {
	var magic [8]byte
	if endian == BigEndian {
		magic = magicBig
	} else {
		magic = magicLittle
	}
	if err := stream.WriteAll(s, magic[:]); err != nil {
		return xerrors.Errorf("matryoshka: writing magic: %w", err)
	}
	if err := stream.WriteAll(s, make([]byte, headerFixedSize)); err != nil {
		return xerrors.Errorf("matryoshka: writing placeholder header: %w", err)
	}

	var nodes []flatNode
	flatten(root, 1, &nodes)
	table := collectStrings(nodes)

	stringTableStart, err := stream.Position(s)
	if err != nil {
		return xerrors.Errorf("matryoshka: %w", err)
	}
	if err := writeStringTable(s, table); err != nil {
		return xerrors.Errorf("matryoshka: writing string table: %w", err)
	}
	dataTreeStart, err := stream.Position(s)
	if err != nil {
		return xerrors.Errorf("matryoshka: %w", err)
	}
	stringTableSize := dataTreeStart - stringTableStart

	for _, n := range nodes {
		if err := writeNode(s, endian, table, n); err != nil {
			return xerrors.Errorf("matryoshka: writing node %q: %w", n.id, err)
		}
	}
	dataTreeEnd, err := stream.Position(s)
	if err != nil {
		return xerrors.Errorf("matryoshka: %w", err)
	}
	dataTreeSize := dataTreeEnd - dataTreeStart

	if err := stream.SeekAbsolute(s, 8+headerReservedSize); err != nil {
		return xerrors.Errorf("matryoshka: seeking back to backpatch header: %w", err)
	}
	if err := writeU32(s, endian, uint32(stringTableSize)); err != nil {
		return xerrors.Errorf("matryoshka: backpatching string_table_size: %w", err)
	}
	if err := writeU32(s, endian, uint32(dataTreeSize)); err != nil {
		return xerrors.Errorf("matryoshka: backpatching data_tree_size: %w", err)
	}
	return nil
}

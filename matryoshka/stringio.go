package matryoshka

import (
	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

// writeStringTable writes every string in t, in order, as a NUL-terminated
// UTF-8 byte sequence.
func writeStringTable(s stream.Stream, t *stringTable) error {
	for _, str := range t.order {
		if err := stream.WriteAll(s, []byte(str)); err != nil {
			return err
		}
		if err := stream.WriteAll(s, []byte{0}); err != nil {
			return err
		}
	}
	return nil
}

// readStringTable reads exactly size bytes as a sequence of
// NUL-terminated strings, returning them in wire order so that a node's
// u16 index can index directly into the returned slice.
func readStringTable(s stream.Stream, size int64) ([]string, error) {
	var strs []string
	var consumed int64
	var cur []byte
	for consumed < size {
		b, err := stream.ReadExact(s, 1)
		if err != nil {
			return nil, err
		}
		consumed++
		if b[0] == 0 {
			strs = append(strs, string(cur))
			cur = nil
			continue
		}
		cur = append(cur, b[0])
	}
	if consumed != size {
		return nil, xerrors.Errorf("matryoshka: %w: string table size mismatch", ErrStructuralMismatch)
	}
	return strs, nil
}

func lookupString(strs []string, idx uint16) (string, error) {
	if int(idx) >= len(strs) {
		return "", xerrors.Errorf("matryoshka: %w: index %d", ErrUnknownStringIndex, idx)
	}
	return strs[idx], nil
}

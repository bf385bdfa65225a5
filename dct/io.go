package dct

import (
	"encoding/binary"
	"sort"

	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

func writeU32LE(s stream.Stream, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return stream.WriteAll(s, b[:])
}

func readU32LE(s stream.Stream) (uint32, error) {
	b, err := stream.ReadExact(s, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// writeRelativeOffset writes absolute as a relative-offset u32, computed
// against the stream's position at the moment of the call: the glossary's
// `absolute = position_before_read + delta + 1`, solved for delta.
func writeRelativeOffset(s stream.Stream, absolute uint64) error {
	pos, err := stream.Position(s)
	if err != nil {
		return err
	}
	return writeU32LE(s, uint32(absolute-uint64(pos)-1))
}

// writeRelativeOffsetOption writes 0 (the "absent" sentinel) when
// absolute is nil, else delegates to writeRelativeOffset.
func writeRelativeOffsetOption(s stream.Stream, absolute *uint64) error {
	if absolute == nil {
		return writeU32LE(s, 0)
	}
	return writeRelativeOffset(s, *absolute)
}

// readRelativeOffset reads a relative-offset u32 and resolves it to an
// absolute position, or nil if the stored delta is 0.
func readRelativeOffset(s stream.Stream) (*uint64, error) {
	pos, err := stream.Position(s)
	if err != nil {
		return nil, err
	}
	rel, err := readU32LE(s)
	if err != nil {
		return nil, err
	}
	if rel == 0 {
		return nil, nil
	}
	abs := uint64(rel) + uint64(pos) + 1
	return &abs, nil
}

func writeCString(s stream.Stream, str string) error {
	if err := stream.WriteAll(s, []byte(str)); err != nil {
		return err
	}
	return stream.WriteAll(s, []byte{0})
}

func readCStringAt(s stream.Stream, absolute uint64) (string, error) {
	saved, err := stream.Position(s)
	if err != nil {
		return "", err
	}
	if err := stream.SeekAbsolute(s, int64(absolute)); err != nil {
		return "", err
	}
	var b []byte
	for {
		c, err := stream.ReadExact(s, 1)
		if err != nil {
			return "", err
		}
		if c[0] == 0 {
			break
		}
		b = append(b, c[0])
	}
	if err := stream.SeekAbsolute(s, saved); err != nil {
		return "", err
	}
	return string(b), nil
}

func readConstU32(s stream.Stream, want uint32, what string) error {
	got, err := readU32LE(s)
	if err != nil {
		return err
	}
	if got != want {
		return xerrors.Errorf("dct: %s: %w: expected 0x%x, got 0x%x", what, ErrStructuralMismatch, want, got)
	}
	return nil
}

// ToWriter serializes m to its complete on-disk form: 32-byte header,
// fixed-size line entries (including empty slots), fixed-size footer
// entries and sub-entries, then the deduplicated string pool in
// first-use order.
func ToWriter(s stream.Stream, m *Map) error {
	lineCount := len(m.lines)
	footerCount := len(m.FooterEntries)
	footerSubCount := 0
	for _, fe := range m.FooterEntries {
		footerSubCount += len(fe.SubEntries)
	}

	lineChunkSize := lineEntrySize * lineCount
	footerChunkSize := footerEntrySize*footerCount + footerSubEntrySize*footerSubCount

	h := header{
		initialHashValue: m.initialHashValue,
		lineOffset:       headerLineOffset,
		lineCount:        uint32(lineCount),
		footerOffset:     uint32(headerSize + lineChunkSize - 1),
		footerCount:      uint32(footerCount),
	}
	if err := stream.WriteAll(s, h.Bytes()); err != nil {
		return xerrors.Errorf("dct: writing header: %w", err)
	}

	textOffsets := make(map[string]uint64)
	curEOF := uint64(headerSize + lineChunkSize + footerChunkSize)
	getOffset := func(text string) uint64 {
		if off, ok := textOffsets[text]; ok {
			return off
		}
		off := curEOF
		textOffsets[text] = off
		curEOF += uint64(len(text) + 1)
		return off
	}

	for _, e := range m.lines {
		if e.lineID == 0 {
			if err := writeU32LE(s, 0); err != nil {
				return err
			}
			if err := writeRelativeOffsetOption(s, nil); err != nil {
				return err
			}
			if err := writeU32LE(s, 0); err != nil {
				return err
			}
			continue
		}
		off := getOffset(e.text)
		if err := writeU32LE(s, e.lineID); err != nil {
			return err
		}
		if err := writeRelativeOffsetOption(s, &off); err != nil {
			return err
		}
		if err := writeU32LE(s, 0); err != nil {
			return err
		}
	}

	for _, fe := range m.FooterEntries {
		off := getOffset(fe.Text)
		if err := writeRelativeOffset(s, off); err != nil {
			return err
		}
		if err := writeU32LE(s, uint32(len(fe.SubEntries))); err != nil {
			return err
		}
		for _, sub := range fe.SubEntries {
			subOff := getOffset(sub.Text)
			if err := writeRelativeOffset(s, subOff); err != nil {
				return err
			}
			if err := writeU32LE(s, sub.ToMapTo); err != nil {
				return err
			}
		}
		if err := writeU32LE(s, 0xFFFFFFDF); err != nil {
			return err
		}
		if err := writeU32LE(s, 11); err != nil {
			return err
		}
		if err := writeU32LE(s, 12); err != nil {
			return err
		}
		if err := writeU32LE(s, 0); err != nil {
			return err
		}
	}

	type textAtOffset struct {
		text   string
		offset uint64
	}
	pool := make([]textAtOffset, 0, len(textOffsets))
	for text, off := range textOffsets {
		pool = append(pool, textAtOffset{text, off})
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].offset < pool[j].offset })
	for _, e := range pool {
		if err := writeCString(s, e.text); err != nil {
			return xerrors.Errorf("dct: writing string pool: %w", err)
		}
	}
	return nil
}

// FromReader parses a complete DCT file out of s.
func FromReader(s stream.Stream) (*Map, error) {
	raw, err := stream.ReadExact(s, headerSize)
	if err != nil {
		return nil, xerrors.Errorf("dct: reading header: %w", err)
	}
	var h header
	if err := h.Load(raw); err != nil {
		return nil, err
	}

	lines := make([]lineEntry, h.lineCount)
	for i := range lines {
		lineID, err := readU32LE(s)
		if err != nil {
			return nil, xerrors.Errorf("dct: line entry %d: %w", i, err)
		}
		textOffset, err := readRelativeOffset(s)
		if err != nil {
			return nil, xerrors.Errorf("dct: line entry %d: %w", i, err)
		}
		if err := readConstU32(s, 0, "line entry unknown field"); err != nil {
			return nil, err
		}
		var text string
		if textOffset != nil {
			text, err = readCStringAt(s, *textOffset)
			if err != nil {
				return nil, xerrors.Errorf("dct: line entry %d text: %w", i, err)
			}
		}
		lines[i] = lineEntry{lineID: lineID, text: text}
	}

	footers := make([]FooterEntry, h.footerCount)
	for i := range footers {
		textOffset, err := readRelativeOffset(s)
		if err != nil {
			return nil, xerrors.Errorf("dct: footer entry %d: %w", i, err)
		}
		subCount, err := readU32LE(s)
		if err != nil {
			return nil, xerrors.Errorf("dct: footer entry %d: %w", i, err)
		}
		subOffsets := make([]*uint64, subCount)
		subToMapTo := make([]uint32, subCount)
		for j := range subOffsets {
			subOffsets[j], err = readRelativeOffset(s)
			if err != nil {
				return nil, xerrors.Errorf("dct: footer entry %d sub-entry %d: %w", i, j, err)
			}
			subToMapTo[j], err = readU32LE(s)
			if err != nil {
				return nil, xerrors.Errorf("dct: footer entry %d sub-entry %d: %w", i, j, err)
			}
		}
		if err := readConstU32(s, 0xFFFFFFDF, "footer entry unknown0"); err != nil {
			return nil, err
		}
		if err := readConstU32(s, 11, "footer entry unknown1"); err != nil {
			return nil, err
		}
		if err := readConstU32(s, 12, "footer entry unknown2"); err != nil {
			return nil, err
		}
		if err := readConstU32(s, 0, "footer entry unknown3"); err != nil {
			return nil, err
		}

		var text string
		if textOffset != nil {
			text, err = readCStringAt(s, *textOffset)
			if err != nil {
				return nil, xerrors.Errorf("dct: footer entry %d text: %w", i, err)
			}
		}
		subEntries := make([]FooterSubEntry, subCount)
		for j := range subEntries {
			var subText string
			if subOffsets[j] != nil {
				subText, err = readCStringAt(s, *subOffsets[j])
				if err != nil {
					return nil, xerrors.Errorf("dct: footer entry %d sub-entry %d text: %w", i, j, err)
				}
			}
			subEntries[j] = FooterSubEntry{Text: subText, ToMapTo: subToMapTo[j]}
		}
		footers[i] = FooterEntry{Text: text, SubEntries: subEntries}
	}

	return &Map{
		initialHashValue: h.initialHashValue,
		lines:            lines,
		FooterEntries:    footers,
	}, nil
}

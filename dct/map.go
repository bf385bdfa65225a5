package dct

import (
	"github.com/distr1/octane/internal/lookup2"
	"golang.org/x/xerrors"
)

// lineEntry is one slot of the open-addressed table. A slot with
// lineID == 0 is empty; this is the same sentinel the source uses, so a
// key whose lookup2 hash happens to be exactly 0 can never be
// distinguished from an empty slot — preserved as-is, not worked around.
type lineEntry struct {
	lineID uint32
	text   string
}

// FooterEntry is one entry of the DCT footer record set: a piece of text
// plus zero or more sub-entries mapping further text to an arbitrary
// uint32.
type FooterEntry struct {
	Text       string
	SubEntries []FooterSubEntry
}

// FooterSubEntry is one (text, to_map_to) pair nested under a FooterEntry.
type FooterSubEntry struct {
	Text    string
	ToMapTo uint32
}

// Map is a fixed-capacity, open-addressed string dictionary keyed by
// Jenkins lookup2, plus an auxiliary footer record set. The capacity is
// fixed at construction (New) or by the line_count read back from a file
// (FromReader); Add never grows the table.
type Map struct {
	initialHashValue uint32
	lines            []lineEntry
	FooterEntries    []FooterEntry
}

// New returns an empty Map with room for capacity distinct keys.
func New(initialHashValue uint32, capacity uint32, footerEntries []FooterEntry) *Map {
	return &Map{
		initialHashValue: initialHashValue,
		lines:            make([]lineEntry, capacity),
		FooterEntries:    footerEntries,
	}
}

// InitialHashValue returns the seed every key is hashed with.
func (m *Map) InitialHashValue() uint32 { return m.initialHashValue }

// GetMaxCapacity returns the total number of slots.
func (m *Map) GetMaxCapacity() uint32 { return uint32(len(m.lines)) }

// GetCurrentCapacity returns the number of occupied slots.
func (m *Map) GetCurrentCapacity() uint32 {
	var n uint32
	for _, e := range m.lines {
		if e.lineID != 0 {
			n++
		}
	}
	return n
}

// modEntryLookup probes from hashedKey's natural slot, linearly, wrapping
// around, stopping at the first slot that either already holds
// hashedKey or is empty. It returns false if every slot was visited
// without finding either.
func (m *Map) modEntryLookup(hashedKey uint32) (int, bool) {
	capacity := len(m.lines)
	if capacity == 0 {
		return 0, false
	}
	pos := int(hashedKey) % capacity
	for i := 0; i < capacity; i++ {
		e := &m.lines[pos]
		if e.lineID == hashedKey || e.lineID == 0 {
			return pos, true
		}
		pos = (pos + 1) % capacity
	}
	return 0, false
}

// Get returns the text stored under key.
func (m *Map) Get(key string) (string, error) {
	hashedKey := lookup2.Hash([]byte(key), m.initialHashValue)
	pos, ok := m.modEntryLookup(hashedKey)
	if !ok {
		return "", xerrors.Errorf("dct: get(%q): %w", key, ErrKeyDoesNotExist)
	}
	e := &m.lines[pos]
	if e.lineID == 0 {
		return "", xerrors.Errorf("dct: get(%q): %w", key, ErrKeyDoesNotExist)
	}
	return e.text, nil
}

// Add inserts key -> text. It fails with ErrKeyAlreadyExists if key's
// hash already occupies a slot, or ErrCapacityExceeded if the whole
// probe sequence is occupied by other keys.
func (m *Map) Add(key, text string) error {
	hashedKey := lookup2.Hash([]byte(key), m.initialHashValue)
	pos, ok := m.modEntryLookup(hashedKey)
	if !ok {
		return xerrors.Errorf("dct: add(%q): %w", key, ErrCapacityExceeded)
	}
	e := &m.lines[pos]
	if e.lineID == hashedKey {
		return xerrors.Errorf("dct: add(%q): %w", key, ErrKeyAlreadyExists)
	}
	e.lineID = hashedKey
	e.text = text
	return nil
}

// LineEntry is one (hash, text) pair surfaced by IterLineEntries.
type LineEntry struct {
	LineID uint32
	Text   string
}

// IterLineEntries returns every occupied slot's (hash, text) pair, in
// slot order. It reproduces the source's off-by-one: the very last slot
// is never visited, even if occupied. See DESIGN.md.
func (m *Map) IterLineEntries() []LineEntry {
	capacity := len(m.lines)
	if capacity == 0 {
		return nil
	}
	var out []LineEntry
	for i := 0; i < capacity-1; i++ {
		e := m.lines[i]
		if e.lineID != 0 {
			out = append(out, LineEntry{LineID: e.lineID, Text: e.text})
		}
	}
	return out
}

// IterFooterEntries returns the map's footer entries. This accessor has
// no analogue in spec.md but mirrors the source's iter_footer_entries();
// see SPEC_FULL.md §4.
func (m *Map) IterFooterEntries() []FooterEntry {
	return m.FooterEntries
}

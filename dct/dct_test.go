package dct

import (
	"testing"

	"github.com/distr1/octane/internal/stream"
)

// Scenario 3: seed=0xDEADBEEF, capacity 30, add("wow","cool") then
// get("wow")="cool"; current capacity 1, max capacity 30.
func TestScenarioAddGet(t *testing.T) {
	m := New(0xDEADBEEF, 30, nil)
	if err := m.Add("wow", "cool"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := m.Get("wow")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "cool" {
		t.Fatalf("Get(wow) = %q, want %q", got, "cool")
	}
	if m.GetCurrentCapacity() != 1 {
		t.Fatalf("GetCurrentCapacity() = %d, want 1", m.GetCurrentCapacity())
	}
	if m.GetMaxCapacity() != 30 {
		t.Fatalf("GetMaxCapacity() = %d, want 30", m.GetMaxCapacity())
	}
}

func TestAddDuplicateKeyFails(t *testing.T) {
	m := New(0x1FEDBEEF, 10, nil)
	if err := m.Add("key1", "v1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("key1", "v2"); err == nil {
		t.Fatalf("expected ErrKeyAlreadyExists on duplicate add")
	}
}

func TestAddBeyondCapacityFails(t *testing.T) {
	m := New(0x1FEDBEEF, 2, nil)
	added := 0
	for i := 0; i < 100 && added < 2; i++ {
		key := string(rune('a' + i))
		if err := m.Add(key, "v"); err == nil {
			added++
		}
	}
	if added != 2 {
		t.Fatalf("expected to fill capacity 2, added %d", added)
	}
	// The table is now completely full; one more distinct key must fail.
	filled := false
	for i := 0; i < 100; i++ {
		key := "extra" + string(rune('a'+i))
		if err := m.Add(key, "v"); err != nil {
			filled = true
			break
		}
	}
	if !filled {
		t.Fatalf("expected CapacityExceeded once every slot is occupied")
	}
}

func TestGetMissingKeyFails(t *testing.T) {
	m := New(1, 10, nil)
	if _, err := m.Get("nope"); err == nil {
		t.Fatalf("expected ErrKeyDoesNotExist")
	}
}

// Scenario 4 / string pool dedup: encode then decode recovers the
// original map including footer entries, and the pool dedups shared text.
func TestRoundTripWithFooterEntries(t *testing.T) {
	m := New(0x1FEDBEEF, 8, []FooterEntry{
		{
			Text: "shared",
			SubEntries: []FooterSubEntry{
				{Text: "shared", ToMapTo: 7},
				{Text: "other", ToMapTo: 9},
			},
		},
	})
	if err := m.Add("key1", "test1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Add("key2", "shared"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	buf := stream.NewBuffer(nil)
	if err := ToWriter(buf, m); err != nil {
		t.Fatalf("ToWriter: %v", err)
	}
	if err := stream.SeekAbsolute(buf, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	decoded, err := FromReader(buf)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}

	if decoded.GetMaxCapacity() != m.GetMaxCapacity() {
		t.Fatalf("capacity mismatch: got %d, want %d", decoded.GetMaxCapacity(), m.GetMaxCapacity())
	}
	got1, err := decoded.Get("key1")
	if err != nil || got1 != "test1" {
		t.Fatalf("decoded Get(key1) = (%q, %v), want (test1, nil)", got1, err)
	}
	got2, err := decoded.Get("key2")
	if err != nil || got2 != "shared" {
		t.Fatalf("decoded Get(key2) = (%q, %v), want (shared, nil)", got2, err)
	}
	if len(decoded.FooterEntries) != 1 {
		t.Fatalf("footer entries = %d, want 1", len(decoded.FooterEntries))
	}
	fe := decoded.FooterEntries[0]
	if fe.Text != "shared" || len(fe.SubEntries) != 2 {
		t.Fatalf("footer entry mismatch: %+v", fe)
	}
	if fe.SubEntries[0].Text != "shared" || fe.SubEntries[0].ToMapTo != 7 {
		t.Fatalf("sub-entry 0 mismatch: %+v", fe.SubEntries[0])
	}
	if fe.SubEntries[1].Text != "other" || fe.SubEntries[1].ToMapTo != 9 {
		t.Fatalf("sub-entry 1 mismatch: %+v", fe.SubEntries[1])
	}
}

func TestHeaderConstants(t *testing.T) {
	m := New(42, 5, nil)
	if err := m.Add("k", "v"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	buf := stream.NewBuffer(nil)
	if err := ToWriter(buf, m); err != nil {
		t.Fatalf("ToWriter: %v", err)
	}
	raw := buf.Bytes()
	var h header
	if err := h.Load(raw[:headerSize]); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h.lineOffset != 19 {
		t.Fatalf("line_offset = %d, want 19 (preserved source constant)", h.lineOffset)
	}
	lineChunkSize := lineEntrySize * 5
	wantFooterOffset := uint32(headerSize + lineChunkSize - 1)
	if h.footerOffset != wantFooterOffset {
		t.Fatalf("footer_offset = %d, want %d", h.footerOffset, wantFooterOffset)
	}
}

// The iterator's off-by-one: the final slot is never yielded even if
// occupied. Preserved exactly from the source; see DESIGN.md.
func TestIterLineEntriesOffByOne(t *testing.T) {
	m := New(0, 1, nil)
	// Capacity 1: modEntryLookup always resolves to slot 0.
	if err := m.Add("only", "v"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := m.IterLineEntries(); len(got) != 0 {
		t.Fatalf("IterLineEntries() = %v, want empty (capacity-1 loop visits zero slots when capacity=1)", got)
	}
}

func TestInvalidMagic(t *testing.T) {
	buf := stream.NewBuffer([]byte("not a dict file at all, 40 bytes padding......."))
	if _, err := FromReader(buf); err == nil {
		t.Fatalf("expected InvalidMagic error")
	}
}

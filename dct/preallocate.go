package dct

import "os"

// PreallocateFixedRegion reserves the disk space ToWriter is guaranteed
// to need for m's fixed-size regions (header, line entries, footer
// entries and sub-entries) before the variable-length string pool is
// appended, the same way compactindexsized preallocates its bucket
// table ahead of the variable record data it writes after.
func PreallocateFixedRegion(f *os.File, m *Map) error {
	footerSubCount := 0
	for _, fe := range m.FooterEntries {
		footerSubCount += len(fe.SubEntries)
	}
	lineChunkSize := lineEntrySize * len(m.lines)
	footerChunkSize := footerEntrySize*len(m.FooterEntries) + footerSubEntrySize*footerSubCount
	size := int64(headerSize + lineChunkSize + footerChunkSize)
	return fallocate(f, 0, size)
}

package octanezip

import (
	"sort"

	"github.com/distr1/octane/internal/stream"
)

// NewOctaneZipWriter is the Cars 3 layout: a compact header table sorted
// by MurmurHash3-32 of each file's archive name, with the directory and
// EOCD written at the end via the shared default footer.
type NewOctaneZipWriter struct {
	baseWriter
}

var _ Writer = (*NewOctaneZipWriter)(nil)

func (w *NewOctaneZipWriter) GetHeaderSpace(names []string) int {
	return octaneHeaderSize(len(names))
}

func (w *NewOctaneZipWriter) WriteHeader(s stream.Stream, infos []FileInfo) error {
	entries := make([]octaneZipEntry, len(infos))
	for i, info := range infos {
		entries[i] = octaneZipEntry{
			NameMMH3:     nameMurmur3(info.FileName),
			HeaderOffset: info.HeaderOffset,
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NameMMH3 < entries[j].NameMMH3 })

	hdr := &octaneZipHeader{Entries: entries}
	return hdr.WriteTo(s)
}

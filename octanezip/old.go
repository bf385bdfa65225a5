package octanezip

import "github.com/distr1/octane/internal/stream"

// OldOctaneZipWriter is the classic layout used by Cars 2, Toy Story 3,
// and Disney Infinity 1.0/2.0: it emits an EOCD followed by the central
// directory at the START of the file as its "header", then the shared
// default footer writes the same directory and EOCD again at the end.
// The duplication looks like a bug but is reproduced exactly per
// spec.md §9.
type OldOctaneZipWriter struct {
	baseWriter
}

var _ Writer = (*OldOctaneZipWriter)(nil)

func (w *OldOctaneZipWriter) GetHeaderSpace(names []string) int {
	return dirEntriesHeaderSize(names) + zipEndLocatorSize
}

func (w *OldOctaneZipWriter) WriteHeader(s stream.Stream, infos []FileInfo) error {
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.FileName
	}

	loc := newDirEndLocator(zipEndLocatorSize, uint32(dirEntriesHeaderSize(names)), uint16(len(infos)))
	if err := loc.WriteTo(s); err != nil {
		return err
	}
	return writeDirEntries(s, infos)
}

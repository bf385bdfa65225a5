package octanezip

import (
	"io"
	"strings"

	"github.com/distr1/octane/internal/stream"
)

// EncryptedNewOctaneZipWriter is the Disney Infinity 3.0 layout: the same
// bytes as NewOctaneZipWriter, wrapped in an AES-128-CTR encrypting
// stream keyed by Key with a zero 16-byte IV.
//
// Every phase (header, each file's record+body, footer) runs through its
// own fresh cipher instance, which is equivalent to resetting the CTR
// counter to zero at the start of that phase. The footer phase is the
// exception: it reuses one cipher across both the directory entries and
// the EOCD, with an explicit counter reset in between (spec.md §9).
type EncryptedNewOctaneZipWriter struct {
	Key []byte
}

var _ Writer = (*EncryptedNewOctaneZipWriter)(nil)

// cipherDisableHeadroom is the number of body bytes of a non-.dct file
// that get encrypted, counted after the file record header (which is
// always encrypted in full); everything past it passes through in
// plaintext.
const cipherDisableHeadroom = 0x200

func (w *EncryptedNewOctaneZipWriter) GetHeaderSpace(names []string) int {
	return (&NewOctaneZipWriter{}).GetHeaderSpace(names)
}

func (w *EncryptedNewOctaneZipWriter) WriteHeader(s stream.Stream, infos []FileInfo) error {
	ew, err := newEncryptedWriter(w.Key, s, nil)
	if err != nil {
		return err
	}
	return (&NewOctaneZipWriter{}).WriteHeader(ew, infos)
}

func (w *EncryptedNewOctaneZipWriter) WriteFile(s stream.Stream, r io.Reader, name string) (FileInfo, error) {
	var disableAt *uint64
	if !strings.HasSuffix(strings.ToLower(name), ".dct") {
		pos := uint64(cipherDisableHeadroom + fileRecordHeaderSize(name))
		disableAt = &pos
	}
	// Files ending in .dct are fully encrypted: disableAt stays nil.

	ew, err := newEncryptedWriter(w.Key, s, disableAt)
	if err != nil {
		return FileInfo{}, err
	}
	return writeFileRecord(ew, r, name)
}

func (w *EncryptedNewOctaneZipWriter) WriteFooter(s stream.Stream, infos []FileInfo) error {
	ew, err := newEncryptedWriter(w.Key, s, nil)
	if err != nil {
		return err
	}

	dirStart, err := stream.Position(ew)
	if err != nil {
		return err
	}
	if err := writeDirEntries(ew, infos); err != nil {
		return err
	}

	ew.resetCipherCounter()

	dirEnd, err := stream.Position(ew)
	if err != nil {
		return err
	}
	loc := newDirEndLocator(uint32(dirStart), uint32(dirEnd-dirStart), uint16(len(infos)))
	return loc.WriteTo(ew)
}

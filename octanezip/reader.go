package octanezip

import (
	"io"

	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

// Entry is one file's recovered central-directory metadata: enough to
// list an archive's contents without decompressing any body. Reading the
// per-file Deflate bodies back out (rather than just their directory
// metadata) remains out of scope per spec.md §1's "reading arbitrary
// ZIPs" non-goal; this exists for the pack tool's own archives only.
type Entry struct {
	FileName         string
	HeaderOffset     uint32
	CompressedSize   uint32
	UncompressedSize uint32
	CRC32            uint32
	MD5              [16]byte
}

// ReadDirectory recovers the central directory that every variant writes
// at the end of the archive via the shared footer. For an EncryptedNew
// archive, key must be the 16-byte AES key the archive was built with;
// pass nil for the Old and New variants.
func ReadDirectory(s stream.Stream, key []byte) ([]Entry, error) {
	total, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if total < zipEndLocatorSize {
		return nil, xerrors.Errorf("octanezip: %w: archive shorter than one EOCD record", ErrStructuralMismatch)
	}

	if err := stream.SeekAbsolute(s, total-zipEndLocatorSize); err != nil {
		return nil, err
	}
	eocdBytes, err := stream.ReadExact(s, zipEndLocatorSize)
	if err != nil {
		return nil, err
	}
	if key != nil {
		eocdBytes, err = decryptFreshCTR(key, eocdBytes)
		if err != nil {
			return nil, err
		}
	}

	var loc zipDirEndLocator
	if err := loc.ReadFrom(stream.NewBuffer(eocdBytes)); err != nil {
		return nil, xerrors.Errorf("octanezip: reading EOCD: %w", err)
	}

	if err := stream.SeekAbsolute(s, int64(loc.DirectoryOffset)); err != nil {
		return nil, err
	}
	dirBytes, err := stream.ReadExact(s, int(loc.DirectorySize))
	if err != nil {
		return nil, err
	}
	if key != nil {
		dirBytes, err = decryptFreshCTR(key, dirBytes)
		if err != nil {
			return nil, err
		}
	}

	buf := stream.NewBuffer(dirBytes)
	entries := make([]Entry, 0, loc.EntriesInDirectory)
	for i := 0; i < int(loc.EntriesInDirectory); i++ {
		var de zipDirEntry
		if err := de.ReadFrom(buf); err != nil {
			return nil, xerrors.Errorf("octanezip: dir entry %d: %w", i, err)
		}
		var md5 [16]byte
		if len(de.ExtraField) >= md5ExtraFieldSize {
			copy(md5[:], de.ExtraField[len(md5ExtraHeader):])
		}
		entries = append(entries, Entry{
			FileName:         de.FileName,
			HeaderOffset:     de.HeaderOffset,
			CompressedSize:   de.CompressedSize,
			UncompressedSize: de.UncompressedSize,
			CRC32:            de.CRC32,
			MD5:              md5,
		})
	}
	return entries, nil
}

// decryptFreshCTR reverses a phase encrypted by a cipher that started at
// counter 0 at the beginning of ciphertext (CTR is its own inverse).
func decryptFreshCTR(key []byte, ciphertext []byte) ([]byte, error) {
	c, err := newSeekableCTR(key, [16]byte{})
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	c.XORKeyStream(out, ciphertext)
	return out, nil
}

// Package octanezip implements the three Octane engine ZIP-family archive
// writers: the classic dual-EOCD layout, the MurmurHash3-indexed "New"
// layout, and an AES-128-CTR partial-stream-encrypted variant of the latter.
//
// All three variants share a per-file record format, a central directory
// with an MD5 extra field, and an end-of-central-directory record; they
// differ only in the header written at the start of the archive and, for
// the encrypted variant, in how bytes are transformed on the way out.
package octanezip

import "errors"

var (
	// ErrStructuralMismatch is returned for unsupported or unexpected
	// on-disk structure, such as a compression method other than Deflate.
	ErrStructuralMismatch = errors.New("octanezip: structural mismatch")

	// ErrEmptyInput is returned when the archive driver is asked to build
	// an archive from a directory that contains no files.
	ErrEmptyInput = errors.New("octanezip: empty input")
)

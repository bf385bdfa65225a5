package matryoshka

import "errors"

// Sentinel errors, wrapped with positional context via xerrors.Errorf at
// the call site. Callers should compare with errors.Is.
var (
	// ErrInvalidMagic is returned when a stream does not start with
	// either the little- or big-endian Matryoshka magic.
	ErrInvalidMagic = errors.New("matryoshka: invalid magic")

	// ErrStructuralMismatch is returned when the node stream violates
	// the depth-reconstruction invariant: a node's level is not
	// reachable from the currently open container path, or a node
	// claims to be a container's child without that container having
	// actually been opened.
	ErrStructuralMismatch = errors.New("matryoshka: structural mismatch")

	// ErrUnknownStringIndex is returned when a node payload references
	// a string-table index out of range.
	ErrUnknownStringIndex = errors.New("matryoshka: string table index out of range")
)

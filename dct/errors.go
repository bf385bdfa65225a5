// Package dct implements the DCT/indctive hash-addressed string
// dictionary: a fixed-capacity, open-addressed table keyed by Jenkins
// lookup2, backed by a content-addressed string pool with relative-offset
// references.
package dct

import "errors"

var (
	// ErrKeyDoesNotExist is returned by Get for a key not present in the map.
	ErrKeyDoesNotExist = errors.New("dct: key does not exist")

	// ErrKeyAlreadyExists is returned by Add when the key's hash already
	// occupies a slot.
	ErrKeyAlreadyExists = errors.New("dct: key already exists")

	// ErrCapacityExceeded is returned by Add when every slot in the
	// probe sequence is occupied by a different key.
	ErrCapacityExceeded = errors.New("dct: capacity exceeded")

	// ErrInvalidMagic is returned when a stream does not start with "DICT".
	ErrInvalidMagic = errors.New("dct: invalid magic")

	// ErrStructuralMismatch is returned when a relative text offset
	// resolves out of range.
	ErrStructuralMismatch = errors.New("dct: structural mismatch")
)

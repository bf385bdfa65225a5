//go:build linux

package dct

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"
)

func fallocate(f *os.File, offset, size int64) error {
	if err := unix.Fallocate(int(f.Fd()), 0, offset, size); err != nil {
		return xerrors.Errorf("dct: fallocate: %w", err)
	}
	return nil
}

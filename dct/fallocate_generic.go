//go:build !linux

package dct

import "os"

// fallocate is a no-op on platforms without a Linux-style fallocate(2):
// the file grows lazily as ToWriter writes into it instead.
func fallocate(f *os.File, offset, size int64) error {
	return nil
}

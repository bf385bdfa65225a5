package octanezip

import (
	"crypto/md5"
	"hash"
	"hash/crc32"

	"github.com/spaolacci/murmur3"
)

// digestWriter fans writes out to a CRC-32 and an MD5 hash simultaneously,
// the way the Rust writer updates both digests from the same read buffer
// while it feeds the Deflate encoder.
type digestWriter struct {
	crc hash.Hash32
	md5 hash.Hash
}

func newDigestWriter() *digestWriter {
	return &digestWriter{
		crc: crc32.NewIEEE(),
		md5: md5.New(),
	}
}

func (d *digestWriter) Write(p []byte) (int, error) {
	d.crc.Write(p)
	d.md5.Write(p)
	return len(p), nil
}

func (d *digestWriter) CRC32() uint32 {
	return d.crc.Sum32()
}

func (d *digestWriter) MD5() [16]byte {
	var out [16]byte
	copy(out[:], d.md5.Sum(nil))
	return out
}

// nameMurmur3 hashes a file's archive-relative name the way the New/
// EncryptedNew header tables index entries: MurmurHash3-32, seed 0, over
// the name's UTF-8 bytes.
func nameMurmur3(name string) uint32 {
	return murmur3.Sum32WithSeed([]byte(name), 0)
}

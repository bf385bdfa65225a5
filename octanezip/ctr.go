package octanezip

import (
	"crypto/aes"
	"crypto/cipher"
	"io"
	"math/big"

	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

// seekableCTR is a CTR-mode keystream generator whose counter can be
// repositioned directly from a byte offset, mirroring the RustCrypto
// `ctr` crate's StreamCipherSeek trait that the source relies on (Go's
// standard cipher.StreamCipher has no seek operation of its own).
//
// Counter convention matches Ctr128BE: the 16-byte IV is treated as a
// big-endian 128-bit integer, and block n's counter value is IV + n.
type seekableCTR struct {
	block cipher.Block
	iv    [16]byte
	pos   uint64
}

func newSeekableCTR(key []byte, iv [16]byte) (*seekableCTR, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, xerrors.Errorf("octanezip: aes key: %w", err)
	}
	return &seekableCTR{block: block, iv: iv}, nil
}

func (c *seekableCTR) Pos() uint64     { return c.pos }
func (c *seekableCTR) Seek(pos uint64) { c.pos = pos }

func (c *seekableCTR) counterBlock(blockIndex uint64) [16]byte {
	ivInt := new(big.Int).SetBytes(c.iv[:])
	ivInt.Add(ivInt, new(big.Int).SetUint64(blockIndex))
	mod := new(big.Int).Lsh(big.NewInt(1), 128)
	ivInt.Mod(ivInt, mod)
	var out [16]byte
	b := ivInt.Bytes()
	copy(out[16-len(b):], b)
	return out
}

// XORKeyStream encrypts/decrypts src into dst starting at the cipher's
// current position, advancing it by len(src).
func (c *seekableCTR) XORKeyStream(dst, src []byte) {
	blockSize := c.block.BlockSize()
	var keystream [16]byte
	for i := 0; i < len(src); {
		blockIndex := c.pos / uint64(blockSize)
		offset := int(c.pos % uint64(blockSize))
		counter := c.counterBlock(blockIndex)
		c.block.Encrypt(keystream[:], counter[:])
		chunk := blockSize - offset
		if remaining := len(src) - i; remaining < chunk {
			chunk = remaining
		}
		for j := 0; j < chunk; j++ {
			dst[i+j] = src[i+j] ^ keystream[offset+j]
		}
		i += chunk
		c.pos += uint64(chunk)
	}
}

// encryptedWriter wraps a stream.Stream, AES-128-CTR-encrypting everything
// written through it. It reproduces the Rust EncryptedWriter's partial-body
// behaviour: once the cipher's logical position reaches
// cipherDisablePosition, further bytes pass through unencrypted, but the
// cipher's position still advances so a later seek lands on the correct
// keystream offset.
type encryptedWriter struct {
	cipher                *seekableCTR
	underlying            stream.Stream
	cipherDisablePosition *uint64 // nil means "always encrypt"
}

func newEncryptedWriter(key []byte, underlying stream.Stream, cipherDisablePosition *uint64) (*encryptedWriter, error) {
	c, err := newSeekableCTR(key, [16]byte{})
	if err != nil {
		return nil, err
	}
	return &encryptedWriter{cipher: c, underlying: underlying, cipherDisablePosition: cipherDisablePosition}, nil
}

// resetCipherCounter reseeds the cipher to position 0, the way the footer
// phase resets before the directory entries and again before the EOCD.
func (w *encryptedWriter) resetCipherCounter() {
	w.cipher.Seek(0)
}

func (w *encryptedWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)

	if w.cipherDisablePosition != nil {
		disableAt := *w.cipherDisablePosition
		current := w.cipher.Pos()
		bytesLeft := uint64(0)
		if current < disableAt {
			bytesLeft = disableAt - current
		}
		toEncrypt := bytesLeft
		if uint64(len(buf)) < toEncrypt {
			toEncrypt = uint64(len(buf))
		}
		if toEncrypt > 0 {
			w.cipher.XORKeyStream(buf[:toEncrypt], buf[:toEncrypt])
		}
		// Synchronize the cipher position with the bytes that bypassed
		// encryption so a later seek still resolves correctly.
		w.cipher.Seek(current + uint64(len(buf)))
	} else {
		w.cipher.XORKeyStream(buf, buf)
	}

	return w.underlying.Write(buf)
}

// Seek propagates the delta between old and new file positions to the
// cipher's counter, restoring the underlying stream's prior position if
// the cipher seek itself cannot be satisfied.
func (w *encryptedWriter) Seek(offset int64, whence int) (int64, error) {
	oldPos, err := stream.Position(w.underlying)
	if err != nil {
		return 0, err
	}
	newPos, err := w.underlying.Seek(offset, whence)
	if err != nil {
		return 0, err
	}

	delta := newPos - oldPos
	newCipherPos := int64(w.cipher.Pos()) + delta
	if newCipherPos < 0 {
		if _, serr := w.underlying.Seek(oldPos, io.SeekStart); serr != nil {
			return 0, serr
		}
		return 0, xerrors.Errorf("octanezip: encrypted writer: seek before start of keystream")
	}
	w.cipher.Seek(uint64(newCipherPos))
	return newPos, nil
}

// Read is unused by the write-only archive driver; it passes through to
// the underlying stream unmodified so encryptedWriter still satisfies
// stream.Stream.
func (w *encryptedWriter) Read(p []byte) (int, error) {
	return w.underlying.Read(p)
}

package octanezip

import (
	"bytes"
	"compress/flate"
	"crypto/md5"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/octane/internal/stream"
	"github.com/spaolacci/murmur3"
)

func writeTestTree(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "octanezip")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	for name, content := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, content, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	return dir
}

// inflateRecord reads a zipFileRecordHeader at the stream's current
// position and returns its decompressed body, for verifying round-trips
// in tests (reading arbitrary third-party ZIPs remains out of scope).
func inflateRecord(t *testing.T, buf []byte, offset int) (zipFileRecordHeader, []byte) {
	t.Helper()
	s := stream.NewBuffer(append([]byte{}, buf...))
	if err := stream.SeekAbsolute(s, int64(offset)); err != nil {
		t.Fatalf("seek: %v", err)
	}
	var hdr zipFileRecordHeader
	if err := hdr.ReadFrom(s); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	bodyStart, err := stream.Position(s)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	body := buf[bodyStart : int64(bodyStart)+int64(hdr.CompressedSize)]
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		t.Fatalf("inflate: %v", err)
	}
	return hdr, out.Bytes()
}

func TestOldVariantRoundTrip(t *testing.T) {
	content := map[string][]byte{"a.txt": []byte("hello world"), "b.txt": []byte("goodbye")}
	dir := writeTestTree(t, content)

	buf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, buf, &OldOctaneZipWriter{}); err != nil {
		t.Fatalf("WriteOctaneZip: %v", err)
	}
	raw := buf.Bytes()

	// Header space is dirEntriesHeaderSize + EOCD, containing an EOCD
	// then the directory entries, duplicated at the end (spec.md §9).
	var startLoc zipDirEndLocator
	startStream := stream.NewBuffer(append([]byte{}, raw...))
	if err := startLoc.ReadFrom(startStream); err != nil {
		t.Fatalf("reading start EOCD: %v", err)
	}
	if int(startLoc.EntriesOnDisk) != len(content) {
		t.Fatalf("start EOCD entries = %d, want %d", startLoc.EntriesOnDisk, len(content))
	}
	if startLoc.DirectoryOffset != zipEndLocatorSize {
		t.Fatalf("start EOCD directory_offset = %d, want %d", startLoc.DirectoryOffset, zipEndLocatorSize)
	}

	headerSpace := dirEntriesHeaderSize([]string{"a.txt", "b.txt"}) + zipEndLocatorSize
	recordStart := headerSpace
	for i := 0; i < len(content); i++ {
		hdr, body := inflateRecord(t, raw, recordStart)
		want, ok := content[hdr.FileName]
		if !ok {
			t.Fatalf("unexpected file name %q in record", hdr.FileName)
		}
		if !bytes.Equal(body, want) {
			t.Fatalf("file %s: got %q, want %q", hdr.FileName, body, want)
		}
		if hdr.CRC32 != crc32.ChecksumIEEE(want) {
			t.Fatalf("file %s: CRC32 mismatch", hdr.FileName)
		}
		recordStart += fileRecordHeaderSize(hdr.FileName) + int(hdr.CompressedSize)
	}

	// The trailing footer duplicates directory+EOCD at end-of-file.
	var endLoc zipDirEndLocator
	endStream := stream.NewBuffer(append([]byte{}, raw...))
	if err := stream.SeekAbsolute(endStream, int64(len(raw)-zipEndLocatorSize)); err != nil {
		t.Fatalf("seek to end EOCD: %v", err)
	}
	if err := endLoc.ReadFrom(endStream); err != nil {
		t.Fatalf("reading end EOCD: %v", err)
	}
	if int(endLoc.EntriesOnDisk) != len(content) {
		t.Fatalf("end EOCD entries = %d, want %d", endLoc.EntriesOnDisk, len(content))
	}
}

func TestScenarioVariantBSingleFile(t *testing.T) {
	dir := writeTestTree(t, map[string][]byte{"foo.txt": []byte("abc")})

	buf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, buf, &NewOctaneZipWriter{}); err != nil {
		t.Fatalf("WriteOctaneZip: %v", err)
	}
	raw := buf.Bytes()

	const headerLen = 12 // magic(4) + count(4) + one 8-byte entry
	if len(raw) < headerLen {
		t.Fatalf("archive too short: %d bytes", len(raw))
	}
	if string(raw[0:4]) != octaneHeaderMagic {
		t.Fatalf("header magic = %x, want %q", raw[0:4], octaneHeaderMagic)
	}

	s := stream.NewBuffer(append([]byte{}, raw...))
	var hdr octaneZipHeader
	if err := hdr.ReadFrom(s); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(hdr.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(hdr.Entries))
	}
	wantMMH3 := murmur3.Sum32WithSeed([]byte("foo.txt"), 0)
	if hdr.Entries[0].NameMMH3 != wantMMH3 {
		t.Fatalf("name_mmh3 = %x, want %x", hdr.Entries[0].NameMMH3, wantMMH3)
	}
	if hdr.Entries[0].HeaderOffset != headerLen {
		t.Fatalf("header_offset = %d, want %d", hdr.Entries[0].HeaderOffset, headerLen)
	}

	fileHdr, body := inflateRecord(t, raw, headerLen)
	if !bytes.Equal(body, []byte("abc")) {
		t.Fatalf("body = %q, want %q", body, "abc")
	}
	if fileHdr.UncompressedSize != 3 {
		t.Fatalf("uncompressed_size = %d, want 3", fileHdr.UncompressedSize)
	}
	if fileHdr.CRC32 != crc32.ChecksumIEEE([]byte("abc")) {
		t.Fatalf("crc32 mismatch")
	}
}

func TestVariantBSortedByMurmur3(t *testing.T) {
	content := map[string][]byte{
		"zzz.txt": []byte("z"),
		"aaa.txt": []byte("a"),
		"mmm.txt": []byte("m"),
	}
	dir := writeTestTree(t, content)

	buf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, buf, &NewOctaneZipWriter{}); err != nil {
		t.Fatalf("WriteOctaneZip: %v", err)
	}

	s := stream.NewBuffer(buf.Bytes())
	var hdr octaneZipHeader
	if err := hdr.ReadFrom(s); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	for i := 1; i < len(hdr.Entries); i++ {
		if hdr.Entries[i-1].NameMMH3 > hdr.Entries[i].NameMMH3 {
			t.Fatalf("entries not sorted ascending by name_mmh3: %+v", hdr.Entries)
		}
	}
}

func TestDirEntryMD5ExtraField(t *testing.T) {
	payload := []byte("payload bytes")
	dir := writeTestTree(t, map[string][]byte{"x.bin": payload})
	wantMD5 := md5.Sum(payload)

	buf := stream.NewBuffer(nil)
	w := &NewOctaneZipWriter{}
	if err := WriteOctaneZip(dir, buf, w); err != nil {
		t.Fatalf("WriteOctaneZip: %v", err)
	}
	raw := buf.Bytes()

	headerSpace := w.GetHeaderSpace([]string{"x.bin"})
	fileHdr, _ := inflateRecord(t, raw, headerSpace)
	recordLen := fileRecordHeaderSize(fileHdr.FileName) + int(fileHdr.CompressedSize)
	dirStart := headerSpace + recordLen

	s := stream.NewBuffer(append([]byte{}, raw...))
	if err := stream.SeekAbsolute(s, int64(dirStart)); err != nil {
		t.Fatalf("seek: %v", err)
	}
	var entry zipDirEntry
	if err := entry.ReadFrom(s); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(entry.ExtraField) != md5ExtraFieldSize {
		t.Fatalf("extra field length = %d, want %d", len(entry.ExtraField), md5ExtraFieldSize)
	}
	if !bytes.Equal(entry.ExtraField[:len(md5ExtraHeader)], md5ExtraHeader[:]) {
		t.Fatalf("extra field header = %x, want %x", entry.ExtraField[:len(md5ExtraHeader)], md5ExtraHeader)
	}
	var gotMD5 [16]byte
	copy(gotMD5[:], entry.ExtraField[len(md5ExtraHeader):])
	if gotMD5 != wantMD5 {
		t.Fatalf("MD5 extra field = %x, want %x", gotMD5, wantMD5)
	}
	if entry.HeaderOffset != uint32(headerSpace) {
		t.Fatalf("header_offset = %d, want %d", entry.HeaderOffset, headerSpace)
	}
}

// EncryptedNew must reproduce the original bytes when the key has no
// effect (it always does — CTR keystream is never zero — so this test
// instead checks that decrypting with the same key recovers the exact
// plaintext record bytes produced by the New writer).
func TestEncryptedNewDecryptsBackToVariantB(t *testing.T) {
	// 1024 pseudo-random bytes, so the Deflate body stays longer than the
	// 0x200-byte encrypted prefix and the plaintext tail is exercised.
	data := make([]byte, 1024)
	x := uint32(1)
	for i := range data {
		x = x*1664525 + 1013904223
		data[i] = byte(x >> 24)
	}
	content := map[string][]byte{"data.bin": data}
	dir := writeTestTree(t, content)

	plainBuf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, plainBuf, &NewOctaneZipWriter{}); err != nil {
		t.Fatalf("variant B: %v", err)
	}

	key := bytes.Repeat([]byte{0x42}, 16)
	cipherBuf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, cipherBuf, &EncryptedNewOctaneZipWriter{Key: key}); err != nil {
		t.Fatalf("variant C: %v", err)
	}

	plain := plainBuf.Bytes()
	cipher := cipherBuf.Bytes()
	if len(plain) != len(cipher) {
		t.Fatalf("length mismatch: plain %d, cipher %d", len(plain), len(cipher))
	}

	name := "data.bin"
	headerSpace := (&NewOctaneZipWriter{}).GetHeaderSpace([]string{name})
	recordHeaderSize := fileRecordHeaderSize(name)
	disableAt := uint64(cipherDisableHeadroom + recordHeaderSize)

	ctr, err := newSeekableCTR(key, [16]byte{})
	if err != nil {
		t.Fatalf("newSeekableCTR: %v", err)
	}
	// Only the file record (header + Deflate body) shares one keystream;
	// the footer after it is a separately encrypted phase.
	plainHdr, _ := inflateRecord(t, plain, headerSpace)
	recordEnd := headerSpace + recordHeaderSize + int(plainHdr.CompressedSize)
	recordArea := plain[headerSpace:recordEnd]
	cipherRecordArea := cipher[headerSpace:recordEnd]

	n := uint64(len(recordArea))
	if disableAt > n {
		disableAt = n
	}
	decrypted := make([]byte, disableAt)
	ctr.XORKeyStream(decrypted, cipherRecordArea[:disableAt])
	if !bytes.Equal(decrypted, recordArea[:disableAt]) {
		t.Fatalf("decrypted header+partial body does not match plaintext")
	}
	if !bytes.Equal(cipherRecordArea[disableAt:], recordArea[disableAt:]) {
		t.Fatalf("bytes past the disable position were altered, want passthrough")
	}

	// Header and footer regions (outside the per-file record area) are
	// independently encrypted phases; confirm the header differs unless
	// the keystream happens to be identity (never, for AES).
	if bytes.Equal(cipher[:headerSpace], plain[:headerSpace]) {
		t.Fatalf("encrypted header unexpectedly identical to plaintext header")
	}
}

func TestEncryptedNewFullyEncryptsDctFiles(t *testing.T) {
	content := map[string][]byte{"table.dct": bytes.Repeat([]byte{0xAB}, 600)}
	dir := writeTestTree(t, content)

	key := make([]byte, 16) // all-zero key, per scenario 6
	buf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, buf, &EncryptedNewOctaneZipWriter{Key: key}); err != nil {
		t.Fatalf("WriteOctaneZip: %v", err)
	}

	plainBuf := stream.NewBuffer(nil)
	if err := WriteOctaneZip(dir, plainBuf, &NewOctaneZipWriter{}); err != nil {
		t.Fatalf("variant B: %v", err)
	}

	headerSpace := (&NewOctaneZipWriter{}).GetHeaderSpace([]string{"table.dct"})
	// Only the file record shares one keystream; the footer after it is a
	// separately encrypted phase.
	plainHdr, _ := inflateRecord(t, plainBuf.Bytes(), headerSpace)
	recordEnd := headerSpace + fileRecordHeaderSize("table.dct") + int(plainHdr.CompressedSize)
	cipherRecord := buf.Bytes()[headerSpace:recordEnd]
	plainRecord := plainBuf.Bytes()[headerSpace:recordEnd]

	if bytes.Equal(cipherRecord, plainRecord) {
		t.Fatalf(".dct record was not encrypted end-to-end")
	}

	ctr, err := newSeekableCTR(key, [16]byte{})
	if err != nil {
		t.Fatalf("newSeekableCTR: %v", err)
	}
	decrypted := make([]byte, len(cipherRecord))
	ctr.XORKeyStream(decrypted, cipherRecord)
	if !bytes.Equal(decrypted, plainRecord) {
		t.Fatalf("full-record decryption did not recover plaintext")
	}
}

func TestMD5DigestMatchesContent(t *testing.T) {
	payload := []byte("arbitrary content for digest checking")
	want := md5.Sum(payload)

	dw := newDigestWriter()
	dw.Write(payload)
	if got := dw.MD5(); got != want {
		t.Fatalf("MD5() = %x, want %x", got, want)
	}
	if got := dw.CRC32(); got != crc32.ChecksumIEEE(payload) {
		t.Fatalf("CRC32() = %x, want %x", got, crc32.ChecksumIEEE(payload))
	}
}

func TestEmptyDirectoryFails(t *testing.T) {
	dir := writeTestTree(t, nil)
	buf := stream.NewBuffer(nil)
	err := WriteOctaneZip(dir, buf, &NewOctaneZipWriter{})
	if err == nil {
		t.Fatalf("expected ErrEmptyInput for an empty directory")
	}
}

package octanezip

import (
	"encoding/binary"

	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

// ZipCompressionType mirrors the PKZIP compression method field. Octane
// archives only ever use Deflate.
type ZipCompressionType uint16

const compressionDeflate ZipCompressionType = 8

const (
	fileRecordMagic    = "PK\x03\x04"
	dirEntryMagic      = "PK\x01\x02"
	dirEndLocatorMagic = "PK\x05\x06"
	octaneHeaderMagic  = "PK\xFF\xFF"

	zipEndLocatorSize = 22
)

var md5ExtraHeader = [7]byte{0x4B, 0x46, 0x13, 0x00, 0x4D, 0x44, 0x35}

const md5ExtraFieldSize = len(md5ExtraHeader) + 16

// fixedFileRecordSize mirrors calculate_file_record_header_size minus the
// variable-length file name.
const fixedFileRecordSize = 4 + 5*2 + 3*4 + 2 + 2

func fileRecordHeaderSize(name string) int {
	return fixedFileRecordSize + len(name)
}

// fixedDirEntrySize mirrors calculate_zip_dir_entries_header_size's
// per-entry constant term, excluding the variable-length file name.
const fixedDirEntrySize = 4 + 6*2 + 3*4 + 5*2 + 2*4 + md5ExtraFieldSize

func dirEntriesHeaderSize(names []string) int {
	total := fixedDirEntrySize * len(names)
	for _, n := range names {
		total += len(n)
	}
	return total
}

// octaneHeaderSize mirrors calculate_octane_zip_header_length.
func octaneHeaderSize(fileCount int) int {
	return 4 + 4 + (4+4)*fileCount
}

// zipFileRecordHeader is the PK\x03\x04 per-file record header, written
// immediately before the file's raw Deflate body.
type zipFileRecordHeader struct {
	Version          uint16
	Flags            uint16
	Compression      ZipCompressionType
	FileTime         uint16
	FileDate         uint16
	CRC32            uint32
	CompressedSize   uint32
	UncompressedSize uint32
	FileName         string
	ExtraField       []byte
}

func (h *zipFileRecordHeader) WriteTo(s stream.Stream) error {
	if err := stream.WriteAll(s, []byte(fileRecordMagic)); err != nil {
		return err
	}
	var fixed [26]byte
	binary.LittleEndian.PutUint16(fixed[0:2], h.Version)
	binary.LittleEndian.PutUint16(fixed[2:4], h.Flags)
	binary.LittleEndian.PutUint16(fixed[4:6], uint16(h.Compression))
	binary.LittleEndian.PutUint16(fixed[6:8], h.FileTime)
	binary.LittleEndian.PutUint16(fixed[8:10], h.FileDate)
	binary.LittleEndian.PutUint32(fixed[10:14], h.CRC32)
	binary.LittleEndian.PutUint32(fixed[14:18], h.CompressedSize)
	binary.LittleEndian.PutUint32(fixed[18:22], h.UncompressedSize)
	binary.LittleEndian.PutUint16(fixed[22:24], uint16(len(h.FileName)))
	binary.LittleEndian.PutUint16(fixed[24:26], uint16(len(h.ExtraField)))
	if err := stream.WriteAll(s, fixed[:]); err != nil {
		return err
	}
	if err := stream.WriteAll(s, []byte(h.FileName)); err != nil {
		return err
	}
	return stream.WriteAll(s, h.ExtraField)
}

func (h *zipFileRecordHeader) ReadFrom(s stream.Stream) error {
	magic, err := stream.ReadExact(s, 4)
	if err != nil {
		return err
	}
	if string(magic) != fileRecordMagic {
		return xerrors.Errorf("octanezip: file record: %w: got %x", ErrStructuralMismatch, magic)
	}
	fixed, err := stream.ReadExact(s, 26)
	if err != nil {
		return err
	}
	h.Version = binary.LittleEndian.Uint16(fixed[0:2])
	h.Flags = binary.LittleEndian.Uint16(fixed[2:4])
	h.Compression = ZipCompressionType(binary.LittleEndian.Uint16(fixed[4:6]))
	h.FileTime = binary.LittleEndian.Uint16(fixed[6:8])
	h.FileDate = binary.LittleEndian.Uint16(fixed[8:10])
	h.CRC32 = binary.LittleEndian.Uint32(fixed[10:14])
	h.CompressedSize = binary.LittleEndian.Uint32(fixed[14:18])
	h.UncompressedSize = binary.LittleEndian.Uint32(fixed[18:22])
	nameLen := binary.LittleEndian.Uint16(fixed[22:24])
	extraLen := binary.LittleEndian.Uint16(fixed[24:26])
	if h.Compression != compressionDeflate {
		return xerrors.Errorf("octanezip: file record: %w: compression %d", ErrStructuralMismatch, h.Compression)
	}
	name, err := stream.ReadExact(s, int(nameLen))
	if err != nil {
		return err
	}
	h.FileName = string(name)
	h.ExtraField, err = stream.ReadExact(s, int(extraLen))
	return err
}

// zipDirEntry is a PK\x01\x02 central directory entry, always carrying the
// fixed MD5 extra field (see md5ExtraHeader).
type zipDirEntry struct {
	VersionMadeBy      uint16
	VersionToExtract   uint16
	Flags              uint16
	Compression        ZipCompressionType
	FileTime           uint16
	FileDate           uint16
	CRC32              uint32
	CompressedSize     uint32
	UncompressedSize   uint32
	DiskNumberStart    uint16
	InternalAttributes uint16
	ExternalAttributes uint32
	HeaderOffset       uint32
	FileName           string
	ExtraField         []byte
	FileComment        string
}

func (e *zipDirEntry) WriteTo(s stream.Stream) error {
	if err := stream.WriteAll(s, []byte(dirEntryMagic)); err != nil {
		return err
	}
	var fixed [42]byte
	binary.LittleEndian.PutUint16(fixed[0:2], e.VersionMadeBy)
	binary.LittleEndian.PutUint16(fixed[2:4], e.VersionToExtract)
	binary.LittleEndian.PutUint16(fixed[4:6], e.Flags)
	binary.LittleEndian.PutUint16(fixed[6:8], uint16(e.Compression))
	binary.LittleEndian.PutUint16(fixed[8:10], e.FileTime)
	binary.LittleEndian.PutUint16(fixed[10:12], e.FileDate)
	binary.LittleEndian.PutUint32(fixed[12:16], e.CRC32)
	binary.LittleEndian.PutUint32(fixed[16:20], e.CompressedSize)
	binary.LittleEndian.PutUint32(fixed[20:24], e.UncompressedSize)
	binary.LittleEndian.PutUint16(fixed[24:26], uint16(len(e.FileName)))
	binary.LittleEndian.PutUint16(fixed[26:28], uint16(len(e.ExtraField)))
	binary.LittleEndian.PutUint16(fixed[28:30], uint16(len(e.FileComment)))
	binary.LittleEndian.PutUint16(fixed[30:32], e.DiskNumberStart)
	binary.LittleEndian.PutUint16(fixed[32:34], e.InternalAttributes)
	binary.LittleEndian.PutUint32(fixed[34:38], e.ExternalAttributes)
	binary.LittleEndian.PutUint32(fixed[38:42], e.HeaderOffset)
	if err := stream.WriteAll(s, fixed[:]); err != nil {
		return err
	}
	if err := stream.WriteAll(s, []byte(e.FileName)); err != nil {
		return err
	}
	if err := stream.WriteAll(s, e.ExtraField); err != nil {
		return err
	}
	return stream.WriteAll(s, []byte(e.FileComment))
}

func (e *zipDirEntry) ReadFrom(s stream.Stream) error {
	magic, err := stream.ReadExact(s, 4)
	if err != nil {
		return err
	}
	if string(magic) != dirEntryMagic {
		return xerrors.Errorf("octanezip: dir entry: %w: got %x", ErrStructuralMismatch, magic)
	}
	fixed, err := stream.ReadExact(s, 42)
	if err != nil {
		return err
	}
	e.VersionMadeBy = binary.LittleEndian.Uint16(fixed[0:2])
	e.VersionToExtract = binary.LittleEndian.Uint16(fixed[2:4])
	e.Flags = binary.LittleEndian.Uint16(fixed[4:6])
	e.Compression = ZipCompressionType(binary.LittleEndian.Uint16(fixed[6:8]))
	e.FileTime = binary.LittleEndian.Uint16(fixed[8:10])
	e.FileDate = binary.LittleEndian.Uint16(fixed[10:12])
	e.CRC32 = binary.LittleEndian.Uint32(fixed[12:16])
	e.CompressedSize = binary.LittleEndian.Uint32(fixed[16:20])
	e.UncompressedSize = binary.LittleEndian.Uint32(fixed[20:24])
	nameLen := binary.LittleEndian.Uint16(fixed[24:26])
	extraLen := binary.LittleEndian.Uint16(fixed[26:28])
	commentLen := binary.LittleEndian.Uint16(fixed[28:30])
	e.DiskNumberStart = binary.LittleEndian.Uint16(fixed[30:32])
	e.InternalAttributes = binary.LittleEndian.Uint16(fixed[32:34])
	e.ExternalAttributes = binary.LittleEndian.Uint32(fixed[34:38])
	e.HeaderOffset = binary.LittleEndian.Uint32(fixed[38:42])

	name, err := stream.ReadExact(s, int(nameLen))
	if err != nil {
		return err
	}
	e.FileName = string(name)
	e.ExtraField, err = stream.ReadExact(s, int(extraLen))
	if err != nil {
		return err
	}
	comment, err := stream.ReadExact(s, int(commentLen))
	if err != nil {
		return err
	}
	e.FileComment = string(comment)
	return nil
}

// zipDirEndLocator is the PK\x05\x06 end-of-central-directory record.
type zipDirEndLocator struct {
	DiskNumber         uint16
	DiskStartNumber    uint16
	EntriesOnDisk      uint16
	EntriesInDirectory uint16
	DirectorySize      uint32
	DirectoryOffset    uint32
	Comment            string
}

func (e *zipDirEndLocator) WriteTo(s stream.Stream) error {
	if err := stream.WriteAll(s, []byte(dirEndLocatorMagic)); err != nil {
		return err
	}
	var fixed [18]byte
	binary.LittleEndian.PutUint16(fixed[0:2], e.DiskNumber)
	binary.LittleEndian.PutUint16(fixed[2:4], e.DiskStartNumber)
	binary.LittleEndian.PutUint16(fixed[4:6], e.EntriesOnDisk)
	binary.LittleEndian.PutUint16(fixed[6:8], e.EntriesInDirectory)
	binary.LittleEndian.PutUint32(fixed[8:12], e.DirectorySize)
	binary.LittleEndian.PutUint32(fixed[12:16], e.DirectoryOffset)
	binary.LittleEndian.PutUint16(fixed[16:18], uint16(len(e.Comment)))
	if err := stream.WriteAll(s, fixed[:]); err != nil {
		return err
	}
	return stream.WriteAll(s, []byte(e.Comment))
}

func newDirEndLocator(directoryOffset, directorySize uint32, entryCount uint16) *zipDirEndLocator {
	return &zipDirEndLocator{
		EntriesOnDisk:      entryCount,
		EntriesInDirectory: entryCount,
		DirectorySize:      directorySize,
		DirectoryOffset:    directoryOffset,
	}
}

func (e *zipDirEndLocator) ReadFrom(s stream.Stream) error {
	magic, err := stream.ReadExact(s, 4)
	if err != nil {
		return err
	}
	if string(magic) != dirEndLocatorMagic {
		return xerrors.Errorf("octanezip: EOCD: %w: got %x", ErrStructuralMismatch, magic)
	}
	fixed, err := stream.ReadExact(s, 18)
	if err != nil {
		return err
	}
	e.DiskNumber = binary.LittleEndian.Uint16(fixed[0:2])
	e.DiskStartNumber = binary.LittleEndian.Uint16(fixed[2:4])
	e.EntriesOnDisk = binary.LittleEndian.Uint16(fixed[4:6])
	e.EntriesInDirectory = binary.LittleEndian.Uint16(fixed[6:8])
	e.DirectorySize = binary.LittleEndian.Uint32(fixed[8:12])
	e.DirectoryOffset = binary.LittleEndian.Uint32(fixed[12:16])
	commentLen := binary.LittleEndian.Uint16(fixed[16:18])
	comment, err := stream.ReadExact(s, int(commentLen))
	if err != nil {
		return err
	}
	e.Comment = string(comment)
	return nil
}

// octaneZipEntry is one (name_mmh3, header_offset) pair in the New/
// EncryptedNew variants' header table.
type octaneZipEntry struct {
	NameMMH3     uint32
	HeaderOffset uint32
}

// octaneZipHeader is the PK\xFF\xFF header written by the New and
// EncryptedNew writers, sorted ascending by NameMMH3.
type octaneZipHeader struct {
	Entries []octaneZipEntry
}

func (h *octaneZipHeader) WriteTo(s stream.Stream) error {
	if err := stream.WriteAll(s, []byte(octaneHeaderMagic)); err != nil {
		return err
	}
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(h.Entries)))
	if err := stream.WriteAll(s, countBuf[:]); err != nil {
		return err
	}
	for _, e := range h.Entries {
		var b [8]byte
		binary.LittleEndian.PutUint32(b[0:4], e.NameMMH3)
		binary.LittleEndian.PutUint32(b[4:8], e.HeaderOffset)
		if err := stream.WriteAll(s, b[:]); err != nil {
			return err
		}
	}
	return nil
}

func (h *octaneZipHeader) ReadFrom(s stream.Stream) error {
	magic, err := stream.ReadExact(s, 4)
	if err != nil {
		return err
	}
	if string(magic) != octaneHeaderMagic {
		return xerrors.Errorf("octanezip: octane header: %w: got %x", ErrStructuralMismatch, magic)
	}
	countBuf, err := stream.ReadExact(s, 4)
	if err != nil {
		return err
	}
	count := binary.LittleEndian.Uint32(countBuf)
	h.Entries = make([]octaneZipEntry, count)
	for i := range h.Entries {
		b, err := stream.ReadExact(s, 8)
		if err != nil {
			return err
		}
		h.Entries[i] = octaneZipEntry{
			NameMMH3:     binary.LittleEndian.Uint32(b[0:4]),
			HeaderOffset: binary.LittleEndian.Uint32(b[4:8]),
		}
	}
	return nil
}

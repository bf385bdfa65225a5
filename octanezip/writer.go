package octanezip

import (
	"io"
	"os"

	"github.com/distr1/octane/internal/stream"
	"github.com/klauspost/compress/flate"
	"golang.org/x/xerrors"
)

// FileInfo records everything the directory/header phases need to know
// about one archived file, once its record and body have been written.
type FileInfo struct {
	HeaderOffset     uint32
	UncompressedSize uint32
	CompressedSize   uint32
	CRC32            uint32
	MD5              [16]byte
	FileName         string
}

// Writer is the capability set the three Octane ZIP variants implement
// selectively: header-space sizing and header emission always differ,
// while the per-file record and footer (directory + EOCD) are usually
// shared. This mirrors the source's ZipWriter trait, whose write_file and
// write_footer carry default implementations that only EncryptedNew
// overrides.
type Writer interface {
	GetHeaderSpace(names []string) int
	WriteHeader(s stream.Stream, infos []FileInfo) error
	WriteFile(s stream.Stream, r io.Reader, name string) (FileInfo, error)
	WriteFooter(s stream.Stream, infos []FileInfo) error
}

// baseWriter supplies the shared WriteFile/WriteFooter behaviour that Old
// and New inherit unchanged; EncryptedNew does not embed it, since every
// phase needs to run through its encrypting wrapper.
type baseWriter struct{}

func (baseWriter) WriteFile(s stream.Stream, r io.Reader, name string) (FileInfo, error) {
	return writeFileRecord(s, r, name)
}

func (baseWriter) WriteFooter(s stream.Stream, infos []FileInfo) error {
	return writeDefaultFooter(s, infos)
}

// writeFileRecord reserves space for a per-file record header, streams the
// file through a raw Deflate encoder while feeding CRC-32 and MD5 from the
// same uncompressed bytes, then backpatches the header with the
// now-known sizes and digests.
func writeFileRecord(s stream.Stream, r io.Reader, name string) (FileInfo, error) {
	headerOffset, err := stream.Position(s)
	if err != nil {
		return FileInfo{}, err
	}
	headerSize := int64(fileRecordHeaderSize(name))
	if err := stream.SeekRelative(s, headerSize); err != nil {
		return FileInfo{}, err
	}

	dw := newDigestWriter()
	deflateWriter, err := flate.NewWriter(s, flate.DefaultCompression)
	if err != nil {
		return FileInfo{}, xerrors.Errorf("octanezip: deflate: %w", err)
	}

	buf := make([]byte, 1024*1024)
	var uncompressedSize int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if _, werr := deflateWriter.Write(chunk); werr != nil {
				return FileInfo{}, xerrors.Errorf("octanezip: deflate write: %w", werr)
			}
			dw.Write(chunk)
			uncompressedSize += int64(n)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return FileInfo{}, xerrors.Errorf("octanezip: reading %s: %w", name, rerr)
		}
	}
	if err := deflateWriter.Close(); err != nil {
		return FileInfo{}, xerrors.Errorf("octanezip: deflate close: %w", err)
	}

	fileEnd, err := stream.Position(s)
	if err != nil {
		return FileInfo{}, err
	}
	compressedSize := fileEnd - headerOffset - headerSize

	if err := stream.SeekAbsolute(s, headerOffset); err != nil {
		return FileInfo{}, err
	}

	hdr := &zipFileRecordHeader{
		Version:          20,
		Flags:            0,
		Compression:      compressionDeflate,
		FileTime:         0xA1C3,
		FileDate:         0x742F,
		CRC32:            dw.CRC32(),
		CompressedSize:   uint32(compressedSize),
		UncompressedSize: uint32(uncompressedSize),
		FileName:         name,
	}
	if err := hdr.WriteTo(s); err != nil {
		return FileInfo{}, err
	}

	if err := stream.SeekAbsolute(s, fileEnd); err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		HeaderOffset:     uint32(headerOffset),
		UncompressedSize: uint32(uncompressedSize),
		CompressedSize:   uint32(compressedSize),
		CRC32:            dw.CRC32(),
		MD5:              dw.MD5(),
		FileName:         name,
	}, nil
}

// writeDirEntries emits a central directory entry, with the fixed MD5
// extra field, for every file info in order.
func writeDirEntries(s stream.Stream, infos []FileInfo) error {
	for _, info := range infos {
		extra := make([]byte, 0, md5ExtraFieldSize)
		extra = append(extra, md5ExtraHeader[:]...)
		extra = append(extra, info.MD5[:]...)

		e := &zipDirEntry{
			VersionMadeBy:    20,
			VersionToExtract: 20,
			Compression:      compressionDeflate,
			FileTime:         0xA1C3,
			FileDate:         0x742F,
			CRC32:            info.CRC32,
			CompressedSize:   info.CompressedSize,
			UncompressedSize: info.UncompressedSize,
			HeaderOffset:     info.HeaderOffset,
			FileName:         info.FileName,
			ExtraField:       extra,
		}
		if err := e.WriteTo(s); err != nil {
			return xerrors.Errorf("octanezip: dir entry %s: %w", info.FileName, err)
		}
	}
	return nil
}

// writeDefaultFooter emits the central directory followed by the EOCD at
// the stream's current position: the shared write_footer every variant
// but EncryptedNew relies on unmodified.
func writeDefaultFooter(s stream.Stream, infos []FileInfo) error {
	dirStart, err := stream.Position(s)
	if err != nil {
		return err
	}
	if err := writeDirEntries(s, infos); err != nil {
		return err
	}
	dirEnd, err := stream.Position(s)
	if err != nil {
		return err
	}
	loc := newDirEndLocator(uint32(dirStart), uint32(dirEnd-dirStart), uint16(len(infos)))
	return loc.WriteTo(s)
}

// WriteOctaneZip drives the shared three-phase archive build: reserve
// header space, write every file's record in directory order, write the
// footer, then seek back to the start and write the header now that every
// FileInfo is known.
func WriteOctaneZip(sourceDir string, out stream.Stream, w Writer) error {
	pairs, err := walkSourceDir(sourceDir)
	if err != nil {
		return err
	}

	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.archive
	}

	if err := stream.SeekRelative(out, int64(w.GetHeaderSpace(names))); err != nil {
		return err
	}

	infos := make([]FileInfo, 0, len(pairs))
	for _, p := range pairs {
		info, err := writeOneFile(out, w, p)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	}

	if err := w.WriteFooter(out, infos); err != nil {
		return xerrors.Errorf("octanezip: writing footer: %w", err)
	}
	if err := stream.SeekAbsolute(out, 0); err != nil {
		return err
	}
	return w.WriteHeader(out, infos)
}

func writeOneFile(out stream.Stream, w Writer, p filePair) (FileInfo, error) {
	f, err := os.Open(p.absolute)
	if err != nil {
		return FileInfo{}, xerrors.Errorf("octanezip: opening %s: %w", p.absolute, err)
	}
	defer f.Close()
	return w.WriteFile(out, f, p.archive)
}

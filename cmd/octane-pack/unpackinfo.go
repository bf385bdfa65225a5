package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/distr1/octane"
	"github.com/distr1/octane/octanezip"
	"golang.org/x/xerrors"
)

type unpackInfoEntry struct {
	FileName         string `json:"file_name"`
	HeaderOffset     uint32 `json:"header_offset"`
	CompressedSize   uint32 `json:"compressed_size"`
	UncompressedSize uint32 `json:"uncompressed_size"`
	CRC32            uint32 `json:"crc32"`
	MD5              string `json:"md5"`
}

func unpackInfo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("unpack-info", flag.ExitOnError)
	key := fs.String("key", "", "hex-encoded 16-byte AES key (disneyinfinity3 profile only)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		return xerrors.Errorf("syntax: unpack-info [-key hex] <profile> <archive.zip>")
	}
	profileName, archivePath := rest[0], rest[1]

	p, ok := octane.ProfileByName(profileName)
	if !ok {
		return xerrors.Errorf("unknown profile %q (see octane.Profiles)", profileName)
	}

	var keyBytes []byte
	if p.Variant == octane.VariantEncryptedNew {
		if *key == "" {
			return xerrors.Errorf("profile %s requires -key", profileName)
		}
		var err error
		keyBytes, err = hex.DecodeString(*key)
		if err != nil {
			return xerrors.Errorf("-key: %w", err)
		}
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return xerrors.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	entries, err := octanezip.ReadDirectory(f, keyBytes)
	if err != nil {
		return xerrors.Errorf("reading directory of %s: %w", archivePath, err)
	}

	out := make([]unpackInfoEntry, len(entries))
	for i, e := range entries {
		out[i] = unpackInfoEntry{
			FileName:         e.FileName,
			HeaderOffset:     e.HeaderOffset,
			CompressedSize:   e.CompressedSize,
			UncompressedSize: e.UncompressedSize,
			CRC32:            e.CRC32,
			MD5:              hex.EncodeToString(e.MD5[:]),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/distr1/octane"
	"github.com/distr1/octane/octanezip"
	"golang.org/x/xerrors"
)

func pack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	key := fs.String("key", "", "hex-encoded 16-byte AES key (disneyinfinity3 profile only)")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 3 {
		return xerrors.Errorf("syntax: pack [-key hex] <profile> <source-dir> <output.zip>")
	}
	profileName, sourceDir, outPath := rest[0], rest[1], rest[2]

	p, ok := octane.ProfileByName(profileName)
	if !ok {
		return xerrors.Errorf("unknown profile %q (see octane.Profiles)", profileName)
	}

	var keyBytes []byte
	if *key != "" {
		var err error
		keyBytes, err = hex.DecodeString(*key)
		if err != nil {
			return xerrors.Errorf("-key: %w", err)
		}
	}

	w, err := p.NewZipWriter(keyBytes)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return xerrors.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()

	if err := octanezip.WriteOctaneZip(sourceDir, f, w); err != nil {
		return xerrors.Errorf("packing %s into %s (profile %s): %w", sourceDir, outPath, profileName, err)
	}

	fmt.Printf("wrote %s (profile %s, variant %s)\n", outPath, profileName, p.Variant)
	return nil
}

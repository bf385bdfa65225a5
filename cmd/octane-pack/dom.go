package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/distr1/octane"
	"github.com/distr1/octane/matryoshka"
	"github.com/distr1/octane/matryoshka/matext"
	"golang.org/x/xerrors"
)

// domConvert converts a Matryoshka binary file to JSON/YAML or back,
// dispatching on each path's extension. This is the dom codec's only CLI
// surface; spec.md §6's base64/NaN text-encoding rules live in matext,
// not here.
func domConvert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dom", flag.ExitOnError)
	endianName := fs.String("endian", "little", "endianness to write a binary output file as: little or big")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 2 {
		return xerrors.Errorf("syntax: dom [-endian little|big] <input> <output>")
	}
	inPath, outPath := rest[0], rest[1]

	root, err := readDOM(inPath)
	if err != nil {
		return err
	}
	return writeDOM(outPath, root, *endianName)
}

func readDOM(path string) (*matryoshka.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return matext.DecodeJSON(f)
	case ".yaml", ".yml":
		return matext.DecodeYAML(f)
	default:
		root, _, err := matryoshka.Decode(f)
		return root, err
	}
}

func writeDOM(path string, root *matryoshka.Container, endianName string) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return matext.EncodeJSON(f, root)
	case ".yaml", ".yml":
		return matext.EncodeYAML(f, root)
	default:
		endian := octane.LittleEndian
		if strings.EqualFold(endianName, "big") {
			endian = octane.BigEndian
		}
		return matryoshka.Encode(f, root, endian)
	}
}

package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/distr1/octane/dct"
	"golang.org/x/xerrors"
)

type dctDumpOutput struct {
	InitialHashValue uint32            `json:"initial_hash_value"`
	MaxCapacity      uint32            `json:"max_capacity"`
	CurrentCapacity  uint32            `json:"current_capacity"`
	Lines            []dct.LineEntry   `json:"lines"`
	FooterEntries    []dct.FooterEntry `json:"footer_entries"`
}

// dctDump reads a .dct file and prints its line table and footer entries
// as JSON. There is no inverse ("dct build"): the file layout spec.md
// §4.2 describes is produced by the game's asset pipeline, not authored
// by hand, so this tool only ever needs to read one back.
func dctDump(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return xerrors.Errorf("syntax: dct <file.dct>")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return xerrors.Errorf("opening %s: %w", args[0], err)
	}
	defer f.Close()

	m, err := dct.FromReader(f)
	if err != nil {
		return xerrors.Errorf("reading %s: %w", args[0], err)
	}

	out := dctDumpOutput{
		InitialHashValue: m.InitialHashValue(),
		MaxCapacity:      m.GetMaxCapacity(),
		CurrentCapacity:  m.GetCurrentCapacity(),
		Lines:            m.IterLineEntries(),
		FooterEntries:    m.IterFooterEntries(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

package matext

import (
	"encoding/json"
	"io"

	"github.com/distr1/octane/matryoshka"
	"golang.org/x/xerrors"
)

// EncodeJSON writes root as indented, human-editable JSON.
func EncodeJSON(w io.Writer, root *matryoshka.Container) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toRepr(root)); err != nil {
		return xerrors.Errorf("matext: encoding JSON: %w", err)
	}
	return nil
}

// DecodeJSON reads a DOM previously written by EncodeJSON.
func DecodeJSON(r io.Reader) (*matryoshka.Container, error) {
	var rc reprContainer
	if err := json.NewDecoder(r).Decode(&rc); err != nil {
		return nil, xerrors.Errorf("matext: decoding JSON: %w", err)
	}
	root, err := fromRepr(&rc)
	if err != nil {
		return nil, xerrors.Errorf("matext: %w", err)
	}
	return root, nil
}

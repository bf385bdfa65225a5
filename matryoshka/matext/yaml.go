package matext

import (
	"io"

	"github.com/distr1/octane/matryoshka"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// EncodeYAML writes root as human-editable YAML.
func EncodeYAML(w io.Writer, root *matryoshka.Container) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(toRepr(root)); err != nil {
		return xerrors.Errorf("matext: encoding YAML: %w", err)
	}
	return nil
}

// DecodeYAML reads a DOM previously written by EncodeYAML.
func DecodeYAML(r io.Reader) (*matryoshka.Container, error) {
	var rc reprContainer
	if err := yaml.NewDecoder(r).Decode(&rc); err != nil {
		return nil, xerrors.Errorf("matext: decoding YAML: %w", err)
	}
	root, err := fromRepr(&rc)
	if err != nil {
		return nil, xerrors.Errorf("matext: %w", err)
	}
	return root, nil
}

package matext

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// base64Prefix tags a Binary value's text encoding, matching the
// original tool's "base64:"+STANDARD_NO_PAD(bytes) convention
// (_examples/original_source/lib/matryoshka/src/lib.rs) so a matext dump
// round-trips through the original tooling, not just this one.
const base64Prefix = "base64:"

// reprBinary is Binary's text-format encoding: a base64Prefix-tagged,
// unpadded standard-base64 string. Decoding rejects a string lacking the
// prefix rather than silently treating it as something else.
type reprBinary []byte

func (b reprBinary) encode() string {
	return base64Prefix + base64.RawStdEncoding.EncodeToString(b)
}

func decodeReprBinary(s string) (reprBinary, error) {
	rest, ok := strings.CutPrefix(s, base64Prefix)
	if !ok {
		return nil, xerrors.Errorf("matext: binary value %q missing %q prefix", s, base64Prefix)
	}
	raw, err := base64.RawStdEncoding.DecodeString(rest)
	if err != nil {
		return nil, xerrors.Errorf("matext: decoding binary value: %w", err)
	}
	return reprBinary(raw), nil
}

func (b reprBinary) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.encode())
}

func (b *reprBinary) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return xerrors.Errorf("matext: parsing binary value: %w", err)
	}
	v, err := decodeReprBinary(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b reprBinary) MarshalYAML() (interface{}, error) {
	return b.encode(), nil
}

func (b *reprBinary) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return xerrors.Errorf("matext: parsing binary value: %w", err)
	}
	v, err := decodeReprBinary(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

package matext

import (
	"encoding/json"
	"math"
	"strconv"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// MarshalJSON encodes NaN as null (encoding/json otherwise refuses to
// marshal a NaN float at all) and every other value as an ordinary
// JSON number.
func (f reprFloat) MarshalJSON() ([]byte, error) {
	if f.isNaN() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

func (f *reprFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = reprFloat(nanFloat32())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 32)
	if err != nil {
		return xerrors.Errorf("matext: parsing float: %w", err)
	}
	*f = reprFloat(v)
	return nil
}

// MarshalYAML mirrors MarshalJSON's null-for-NaN rule for the YAML leg.
func (f reprFloat) MarshalYAML() (interface{}, error) {
	if f.isNaN() {
		return nil, nil
	}
	return float64(f), nil
}

func (f *reprFloat) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*f = reprFloat(nanFloat32())
		return nil
	}
	var v float64
	if err := value.Decode(&v); err != nil {
		return xerrors.Errorf("matext: parsing float: %w", err)
	}
	*f = reprFloat(v)
	return nil
}

func nanFloat32() float32 { return float32(math.NaN()) }

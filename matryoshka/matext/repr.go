// Package matext provides human-editable text encodings (JSON and YAML)
// of a matryoshka.Container DOM: the wire codec's job is to be compact
// and unambiguous over bytes, matext's job is to be readable and
// editable by a person, so it uses one explicit, order-preserving,
// tagged-value tree shared by both encodings rather than trying to
// squeeze the DOM into bare JSON objects/arrays (which cannot
// distinguish a Vec value from a repeated-key Multiple projection, and
// cannot preserve key order through a JSON object).
package matext

import (
	"math"

	"github.com/distr1/octane/matryoshka"
	"github.com/google/uuid"
	"golang.org/x/xerrors"
)

// reprContainer is an ordered sequence of keyed entries: the text-format
// mirror of matryoshka.Container.
type reprContainer struct {
	Entries []reprEntry `json:"entries" yaml:"entries"`
}

type reprEntry struct {
	Key    string      `json:"key" yaml:"key"`
	Values []reprValue `json:"values" yaml:"values"`
}

// reprValue is an explicitly tagged union mirroring matryoshka.Value; only
// the field named by Type is meaningful.
type reprValue struct {
	Type string `json:"type" yaml:"type"`

	Container *reprContainer `json:"container,omitempty" yaml:"container,omitempty"`
	Binary    reprBinary     `json:"binary,omitempty" yaml:"binary,omitempty"`
	Uuid      *uuid.UUID     `json:"uuid,omitempty" yaml:"uuid,omitempty"`
	Int       *int32         `json:"int,omitempty" yaml:"int,omitempty"`
	IntVec    []int32        `json:"int_vec,omitempty" yaml:"int_vec,omitempty"`
	Float     *reprFloat     `json:"float,omitempty" yaml:"float,omitempty"`
	FloatVec  []reprFloat    `json:"float_vec,omitempty" yaml:"float_vec,omitempty"`
	String    *string        `json:"string,omitempty" yaml:"string,omitempty"`
	StringVec []string       `json:"string_vec,omitempty" yaml:"string_vec,omitempty"`
}

const (
	typeContainer = "container"
	typeBinary    = "binary"
	typeUuid      = "uuid"
	typeInt       = "int"
	typeIntVec    = "int_vec"
	typeFloat     = "float"
	typeFloatVec  = "float_vec"
	typeString    = "string"
	typeStringVec = "string_vec"
)

// reprFloat marshals NaN as null in both JSON and YAML; every other value
// marshals as an ordinary number.
type reprFloat float32

func (f reprFloat) isNaN() bool { return math.IsNaN(float64(f)) }

func toRepr(c *matryoshka.Container) *reprContainer {
	rc := &reprContainer{}
	for _, key := range c.Keys() {
		entry, _ := c.Get(key)
		re := reprEntry{Key: key}
		for _, v := range entry.Values {
			re.Values = append(re.Values, valueToRepr(v))
		}
		rc.Entries = append(rc.Entries, re)
	}
	return rc
}

func valueToRepr(v matryoshka.Value) reprValue {
	switch v.Kind {
	case matryoshka.KindContainer:
		return reprValue{Type: typeContainer, Container: toRepr(v.Container)}
	case matryoshka.KindBinary:
		return reprValue{Type: typeBinary, Binary: reprBinary(v.Binary)}
	case matryoshka.KindUuid:
		u := uuid.UUID(v.Uuid)
		return reprValue{Type: typeUuid, Uuid: &u}
	case matryoshka.KindInt:
		i := v.Int
		return reprValue{Type: typeInt, Int: &i}
	case matryoshka.KindIntVec:
		return reprValue{Type: typeIntVec, IntVec: v.IntVec}
	case matryoshka.KindFloat:
		f := reprFloat(v.Float)
		return reprValue{Type: typeFloat, Float: &f}
	case matryoshka.KindFloatVec:
		fv := make([]reprFloat, len(v.FloatVec))
		for i, f := range v.FloatVec {
			fv[i] = reprFloat(f)
		}
		return reprValue{Type: typeFloatVec, FloatVec: fv}
	case matryoshka.KindString:
		s := v.String
		return reprValue{Type: typeString, String: &s}
	case matryoshka.KindStringVec:
		return reprValue{Type: typeStringVec, StringVec: v.StringVec}
	default:
		return reprValue{Type: typeString, String: new(string)}
	}
}

func fromRepr(rc *reprContainer) (*matryoshka.Container, error) {
	c := matryoshka.NewContainer()
	for _, re := range rc.Entries {
		for _, rv := range re.Values {
			v, err := reprToValue(rv)
			if err != nil {
				return nil, xerrors.Errorf("matext: key %q: %w", re.Key, err)
			}
			c.Append(re.Key, v)
		}
	}
	return c, nil
}

func reprToValue(rv reprValue) (matryoshka.Value, error) {
	switch rv.Type {
	case typeContainer:
		if rv.Container == nil {
			return matryoshka.Value{}, xerrors.Errorf("matext: container value missing its container field")
		}
		child, err := fromRepr(rv.Container)
		if err != nil {
			return matryoshka.Value{}, err
		}
		return matryoshka.NewContainerValue(child), nil
	case typeBinary:
		return matryoshka.NewBinaryValue([]byte(rv.Binary)), nil
	case typeUuid:
		if rv.Uuid == nil {
			return matryoshka.Value{}, xerrors.Errorf("matext: uuid value missing its uuid field")
		}
		return matryoshka.NewUuidValue([16]byte(*rv.Uuid)), nil
	case typeInt:
		if rv.Int == nil {
			return matryoshka.Value{}, xerrors.Errorf("matext: int value missing its int field")
		}
		return matryoshka.NewIntValue(*rv.Int), nil
	case typeIntVec:
		return matryoshka.NewIntVecValue(rv.IntVec), nil
	case typeFloat:
		// Both decoders leave a pointer field nil for a null literal
		// without calling reprFloat's unmarshalers, so a nil Float is the
		// null that MarshalJSON/MarshalYAML write for NaN.
		if rv.Float == nil {
			return matryoshka.NewFloatValue(nanFloat32()), nil
		}
		return matryoshka.NewFloatValue(float32(*rv.Float)), nil
	case typeFloatVec:
		fv := make([]float32, len(rv.FloatVec))
		for i, f := range rv.FloatVec {
			fv[i] = float32(f)
		}
		return matryoshka.NewFloatVecValue(fv), nil
	case typeString:
		if rv.String == nil {
			return matryoshka.Value{}, xerrors.Errorf("matext: string value missing its string field")
		}
		return matryoshka.NewStringValue(*rv.String), nil
	case typeStringVec:
		return matryoshka.NewStringVecValue(rv.StringVec), nil
	default:
		return matryoshka.Value{}, xerrors.Errorf("matext: unknown value type %q", rv.Type)
	}
}

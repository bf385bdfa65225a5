package matext

import (
	"bytes"
	"math"
	"testing"

	"github.com/distr1/octane/matryoshka"
	"github.com/google/go-cmp/cmp"
)

func domCmpOpts() cmp.Option {
	return cmp.Options{
		cmp.AllowUnexported(matryoshka.Container{}, matryoshka.Entry{}),
		cmp.Comparer(func(a, b float32) bool {
			if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
				return true
			}
			return a == b
		}),
	}
}

func buildSampleDOM() *matryoshka.Container {
	root := matryoshka.NewContainer()
	root.Append("Name", matryoshka.NewStringValue("hello"))
	root.Append("Count", matryoshka.NewIntValue(-5))
	root.Append("Tags", matryoshka.NewStringVecValue([]string{"a", "b"}))
	root.Append("Blob", matryoshka.NewBinaryValue([]byte{1, 2, 3, 4}))
	root.Append("NaN", matryoshka.NewFloatValue(float32(math.NaN())))

	var uid [16]byte
	for i := range uid {
		uid[i] = byte(i)
	}
	root.Append("Id", matryoshka.NewUuidValue(uid))

	child := matryoshka.NewContainer()
	child.Append("Inner", matryoshka.NewIntValue(1))
	root.Append("Group", matryoshka.NewContainerValue(child))

	root.Append("Dup", matryoshka.NewIntValue(1))
	root.Append("Dup", matryoshka.NewIntValue(2))

	return root
}

func TestJSONRoundTrip(t *testing.T) {
	root := buildSampleDOM()
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, root); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	decoded, err := DecodeJSON(&buf)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if diff := cmp.Diff(root, decoded, domCmpOpts()); diff != "" {
		t.Fatalf("JSON round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	root := buildSampleDOM()
	var buf bytes.Buffer
	if err := EncodeYAML(&buf, root); err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	decoded, err := DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("DecodeYAML: %v", err)
	}
	if diff := cmp.Diff(root, decoded, domCmpOpts()); diff != "" {
		t.Fatalf("YAML round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONNaNEncodesAsNull(t *testing.T) {
	root := matryoshka.NewContainer()
	root.Append("N", matryoshka.NewFloatValue(float32(math.NaN())))
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, root); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"float": null`)) {
		t.Fatalf("expected NaN to encode as null, got:\n%s", buf.String())
	}
}

func TestJSONBinaryEncodesWithBase64Prefix(t *testing.T) {
	root := matryoshka.NewContainer()
	root.Append("Blob", matryoshka.NewBinaryValue([]byte{1, 2, 3, 4}))
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, root); err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	// base64.RawStdEncoding("\x01\x02\x03\x04") == "AQIDBA"
	if !bytes.Contains(buf.Bytes(), []byte(`"binary": "base64:AQIDBA"`)) {
		t.Fatalf("expected base64: prefixed, unpadded binary encoding, got:\n%s", buf.String())
	}
}

func TestBinaryWithoutPrefixFailsToDecode(t *testing.T) {
	_, err := decodeReprBinary("AQIDBA==")
	if err == nil {
		t.Fatalf("expected an error decoding a binary string without the base64: prefix")
	}
}

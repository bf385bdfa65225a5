package octane

import (
	"testing"

	"github.com/distr1/octane/octanezip"
)

func TestProfileByName(t *testing.T) {
	p, ok := ProfileByName("cars3")
	if !ok {
		t.Fatalf("expected cars3 profile to exist")
	}
	if p.Variant != VariantNew {
		t.Fatalf("cars3 variant = %v, want VariantNew", p.Variant)
	}

	if _, ok := ProfileByName("does-not-exist"); ok {
		t.Fatalf("expected lookup miss for unknown profile name")
	}
}

func TestNewZipWriterPerVariant(t *testing.T) {
	cases := []struct {
		name    string
		want    interface{}
		keyLen  int
		wantErr bool
	}{
		{"cars2", &octanezip.OldOctaneZipWriter{}, 0, false},
		{"cars3", &octanezip.NewOctaneZipWriter{}, 0, false},
		{"disneyinfinity3", &octanezip.EncryptedNewOctaneZipWriter{}, 16, false},
		{"disneyinfinity3", nil, 8, true},
	}
	for _, c := range cases {
		p, ok := ProfileByName(c.name)
		if !ok {
			t.Fatalf("profile %s not found", c.name)
		}
		key := make([]byte, c.keyLen)
		w, err := p.NewZipWriter(key)
		if c.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error for key length %d", c.name, c.keyLen)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: NewZipWriter: %v", c.name, err)
		}
		switch c.want.(type) {
		case *octanezip.OldOctaneZipWriter:
			if _, ok := w.(*octanezip.OldOctaneZipWriter); !ok {
				t.Fatalf("%s: got %T, want *OldOctaneZipWriter", c.name, w)
			}
		case *octanezip.NewOctaneZipWriter:
			if _, ok := w.(*octanezip.NewOctaneZipWriter); !ok {
				t.Fatalf("%s: got %T, want *NewOctaneZipWriter", c.name, w)
			}
		case *octanezip.EncryptedNewOctaneZipWriter:
			if _, ok := w.(*octanezip.EncryptedNewOctaneZipWriter); !ok {
				t.Fatalf("%s: got %T, want *EncryptedNewOctaneZipWriter", c.name, w)
			}
		}
	}
}

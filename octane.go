// Package octane ties together the three Octane engine codecs
// (matryoshka, dct, octanezip) behind a small per-title compatibility
// table, the way distri's own root package is a thin façade consumed by
// cmd/distri.
package octane

import (
	"github.com/distr1/octane/matryoshka"
	"github.com/distr1/octane/octanezip"
	"golang.org/x/xerrors"
)

// Endian is matryoshka's endian tag, re-exported here since SPEC_FULL.md
// treats it as shared vocabulary between the DOM codec and the archive
// writers' compatibility table. It is defined in matryoshka, not here,
// because matryoshka sits below this package in the dependency order and
// must not import back up to it.
type Endian = matryoshka.Endian

const (
	LittleEndian = matryoshka.LittleEndian
	BigEndian    = matryoshka.BigEndian
)

// ZipVariant names one of the three Octane ZIP writer strategies.
type ZipVariant int

const (
	VariantOld ZipVariant = iota
	VariantNew
	VariantEncryptedNew
)

func (v ZipVariant) String() string {
	switch v {
	case VariantOld:
		return "old"
	case VariantNew:
		return "new"
	case VariantEncryptedNew:
		return "encrypted-new"
	default:
		return "unknown"
	}
}

// Profile is a compatibility target: a game title's Matryoshka endianness
// and Octane ZIP variant, per spec.md §6.
type Profile struct {
	Name    string
	Variant ZipVariant
	Endian  Endian
}

// Profiles enumerates every compatibility target spec.md §6 names. The
// source ships an equivalent per-title constant table that the
// distillation into spec.md dropped; this restores it as additive
// convenience (SPEC_FULL.md §4), not a new codec.
var Profiles = []Profile{
	{Name: "cars2", Variant: VariantOld, Endian: LittleEndian},
	{Name: "toystory3", Variant: VariantOld, Endian: LittleEndian},
	{Name: "disneyinfinity1", Variant: VariantOld, Endian: LittleEndian},
	{Name: "disneyinfinity2", Variant: VariantOld, Endian: LittleEndian},
	{Name: "cars3", Variant: VariantNew, Endian: LittleEndian},
	{Name: "disneyinfinity3", Variant: VariantEncryptedNew, Endian: LittleEndian},
}

// ProfileByName looks up a compatibility target by its short name.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Profiles {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// NewZipWriter constructs the octanezip.Writer strategy p's variant calls
// for. key is only consulted (and required to be 16 bytes) for
// VariantEncryptedNew.
func (p Profile) NewZipWriter(key []byte) (octanezip.Writer, error) {
	switch p.Variant {
	case VariantOld:
		return &octanezip.OldOctaneZipWriter{}, nil
	case VariantNew:
		return &octanezip.NewOctaneZipWriter{}, nil
	case VariantEncryptedNew:
		if len(key) != 16 {
			return nil, xerrors.Errorf("octane: profile %s: AES-128 key must be 16 bytes, got %d", p.Name, len(key))
		}
		return &octanezip.EncryptedNewOctaneZipWriter{Key: key}, nil
	default:
		return nil, xerrors.Errorf("octane: profile %s: unknown zip variant %v", p.Name, p.Variant)
	}
}

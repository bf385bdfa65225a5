package matryoshka

import (
	"github.com/distr1/octane/internal/stream"
	"golang.org/x/xerrors"
)

// writeNode serializes one flatNode: header, key/name indices, payload.
func writeNode(s stream.Stream, endian Endian, table *stringTable, n flatNode) error {
	key, name, hasName := splitKey(n.id)
	keyIdx, ok := table.indexOf(key)
	if !ok {
		return xerrors.Errorf("matryoshka: key %q missing from string table", key)
	}
	var nameIdx uint32
	if hasName {
		nameIdx, ok = table.indexOf(name)
		if !ok {
			return xerrors.Errorf("matryoshka: name %q missing from string table", name)
		}
	}

	hdr := nodeHeader{hasName: hasName, level: n.level, lenSize: 1, intSize: 1}

	switch n.value.Kind {
	case KindContainer:
		hdr.typ, hdr.dataTyp = wireTypeContainer, wireDataNone
	case KindUuid:
		hdr.typ, hdr.dataTyp = wireTypeScalar, wireDataBinary
	case KindBinary:
		hdr.typ, hdr.dataTyp = wireTypeScalar, wireDataBinary
		hdr.lenSize = u32Size(uint32(len(n.value.Binary)))
	case KindInt:
		hdr.typ, hdr.dataTyp = wireTypeScalar, wireDataInt
		hdr.intSize = i32Size(n.value.Int)
	case KindIntVec:
		hdr.typ, hdr.dataTyp = wireTypeVec, wireDataInt
		hdr.lenSize = u32Size(uint32(len(n.value.IntVec)))
		hdr.intSize = 1
		for _, v := range n.value.IntVec {
			if w := i32Size(v); w > hdr.intSize {
				hdr.intSize = w
			}
		}
	case KindFloat:
		hdr.typ, hdr.dataTyp = wireTypeScalar, wireDataFloat
	case KindFloatVec:
		hdr.typ, hdr.dataTyp = wireTypeVec, wireDataFloat
		hdr.lenSize = u32Size(uint32(len(n.value.FloatVec)))
	case KindString:
		hdr.typ, hdr.dataTyp = wireTypeScalar, wireDataString
	case KindStringVec:
		hdr.typ, hdr.dataTyp = wireTypeVec, wireDataString
		hdr.lenSize = u32Size(uint32(len(n.value.StringVec)))
	}

	if err := writeU16(s, endian, hdr.pack()); err != nil {
		return err
	}
	if err := writeU16(s, endian, uint16(keyIdx)); err != nil {
		return err
	}
	if hasName {
		if err := writeU16(s, endian, uint16(nameIdx)); err != nil {
			return err
		}
	}

	switch n.value.Kind {
	case KindContainer:
		// no payload
	case KindUuid:
		raw := n.value.Uuid
		if endian == LittleEndian {
			raw = uuidBytesLE(raw)
		}
		if err := writeWidth(s, endian, 16, int(hdr.lenSize)); err != nil {
			return err
		}
		if err := stream.WriteAll(s, raw[:]); err != nil {
			return err
		}
	case KindBinary:
		if err := writeWidth(s, endian, uint32(len(n.value.Binary)), int(hdr.lenSize)); err != nil {
			return err
		}
		if err := stream.WriteAll(s, n.value.Binary); err != nil {
			return err
		}
	case KindInt:
		if err := writeWidth(s, endian, uint32(n.value.Int), int(hdr.intSize)); err != nil {
			return err
		}
	case KindIntVec:
		if err := writeWidth(s, endian, uint32(len(n.value.IntVec)), int(hdr.lenSize)); err != nil {
			return err
		}
		for _, v := range n.value.IntVec {
			if err := writeWidth(s, endian, uint32(v), int(hdr.intSize)); err != nil {
				return err
			}
		}
	case KindFloat:
		if err := writeFloat(s, endian, n.value.Float); err != nil {
			return err
		}
	case KindFloatVec:
		if err := writeWidth(s, endian, uint32(len(n.value.FloatVec)), int(hdr.lenSize)); err != nil {
			return err
		}
		for _, f := range n.value.FloatVec {
			if err := writeFloat(s, endian, f); err != nil {
				return err
			}
		}
	case KindString:
		idx, ok := table.indexOf(n.value.String)
		if !ok {
			return xerrors.Errorf("matryoshka: string %q missing from string table", n.value.String)
		}
		if err := writeU16(s, endian, uint16(idx)); err != nil {
			return err
		}
	case KindStringVec:
		if err := writeWidth(s, endian, uint32(len(n.value.StringVec)), int(hdr.lenSize)); err != nil {
			return err
		}
		for _, str := range n.value.StringVec {
			idx, ok := table.indexOf(str)
			if !ok {
				return xerrors.Errorf("matryoshka: string %q missing from string table", str)
			}
			if err := writeU16(s, endian, uint16(idx)); err != nil {
				return err
			}
		}
	}
	return nil
}

// readNodeTree reads size bytes of node stream and reconstructs the DOM
// per spec.md's "Tree reconstruction" rule: walk down from root pushing
// into the last container at each level, appending the new node at its
// declared depth.
func readNodeTree(s stream.Stream, endian Endian, strs []string, size int64) (*Container, error) {
	root := NewContainer()
	stack := []*Container{root}

	start, err := stream.Position(s)
	if err != nil {
		return nil, err
	}
	for {
		pos, err := stream.Position(s)
		if err != nil {
			return nil, err
		}
		if pos-start >= size {
			break
		}

		hdrRaw, err := readU16(s, endian)
		if err != nil {
			return nil, err
		}
		hdr := unpackNodeHeader(hdrRaw)

		keyIdxRaw, err := readU16(s, endian)
		if err != nil {
			return nil, err
		}
		key, err := lookupString(strs, keyIdxRaw)
		if err != nil {
			return nil, err
		}

		var name string
		if hdr.hasName {
			nameIdxRaw, err := readU16(s, endian)
			if err != nil {
				return nil, err
			}
			name, err = lookupString(strs, nameIdxRaw)
			if err != nil {
				return nil, err
			}
		}
		id := joinKey(key, name, hdr.hasName)

		value, err := readPayload(s, endian, strs, hdr, key)
		if err != nil {
			return nil, err
		}

		level := int(hdr.level)
		if level < 1 || level > len(stack) {
			return nil, xerrors.Errorf("matryoshka: node %q at level %d: %w", id, level, ErrStructuralMismatch)
		}
		parent := stack[level-1]
		parent.Append(id, value)
		stack = stack[:level]
		if value.Kind == KindContainer {
			stack = append(stack, value.Container)
		}
	}
	return root, nil
}

func readPayload(s stream.Stream, endian Endian, strs []string, hdr nodeHeader, key string) (Value, error) {
	switch {
	case hdr.typ == wireTypeContainer && hdr.dataTyp == wireDataNone:
		return NewContainerValue(NewContainer()), nil

	case hdr.typ == wireTypeScalar && hdr.dataTyp == wireDataBinary:
		n, err := readWidth(s, endian, int(hdr.lenSize))
		if err != nil {
			return Value{}, err
		}
		raw, err := stream.ReadExact(s, int(n))
		if err != nil {
			return Value{}, err
		}
		if key == uuidKey && len(raw) == 16 {
			var b [16]byte
			copy(b[:], raw)
			if endian == LittleEndian {
				b = uuidFromBytesLE(b)
			}
			return NewUuidValue(b), nil
		}
		return NewBinaryValue(raw), nil

	case hdr.typ == wireTypeScalar && hdr.dataTyp == wireDataInt:
		raw, err := readWidth(s, endian, int(hdr.intSize))
		if err != nil {
			return Value{}, err
		}
		return NewIntValue(signExtend(raw, int(hdr.intSize))), nil

	case hdr.typ == wireTypeVec && hdr.dataTyp == wireDataInt:
		n, err := readWidth(s, endian, int(hdr.lenSize))
		if err != nil {
			return Value{}, err
		}
		vec := make([]int32, n)
		for i := range vec {
			raw, err := readWidth(s, endian, int(hdr.intSize))
			if err != nil {
				return Value{}, err
			}
			vec[i] = signExtend(raw, int(hdr.intSize))
		}
		return NewIntVecValue(vec), nil

	case hdr.typ == wireTypeScalar && hdr.dataTyp == wireDataFloat:
		f, err := readFloat(s, endian)
		if err != nil {
			return Value{}, err
		}
		return NewFloatValue(f), nil

	case hdr.typ == wireTypeVec && hdr.dataTyp == wireDataFloat:
		n, err := readWidth(s, endian, int(hdr.lenSize))
		if err != nil {
			return Value{}, err
		}
		vec := make([]float32, n)
		for i := range vec {
			f, err := readFloat(s, endian)
			if err != nil {
				return Value{}, err
			}
			vec[i] = f
		}
		return NewFloatVecValue(vec), nil

	case hdr.typ == wireTypeScalar && hdr.dataTyp == wireDataString:
		idx, err := readU16(s, endian)
		if err != nil {
			return Value{}, err
		}
		str, err := lookupString(strs, idx)
		if err != nil {
			return Value{}, err
		}
		return NewStringValue(str), nil

	case hdr.typ == wireTypeVec && hdr.dataTyp == wireDataString:
		n, err := readWidth(s, endian, int(hdr.lenSize))
		if err != nil {
			return Value{}, err
		}
		vec := make([]string, n)
		for i := range vec {
			idx, err := readU16(s, endian)
			if err != nil {
				return Value{}, err
			}
			str, err := lookupString(strs, idx)
			if err != nil {
				return Value{}, err
			}
			vec[i] = str
		}
		return NewStringVecValue(vec), nil

	default:
		return Value{}, xerrors.Errorf("matryoshka: node %q: %w: unknown (type=%d, data_type=%d)", key, ErrStructuralMismatch, hdr.typ, hdr.dataTyp)
	}
}

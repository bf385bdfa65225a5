package matryoshka

// Endian selects which of the two magic constants, and which byte order
// for every multi-byte field that follows, a Matryoshka stream uses.
type Endian int

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Kind discriminates the tagged union that is Value. Matryoshka's wire
// format only ever stores one of these nine shapes per node.
type Kind int

const (
	KindContainer Kind = iota
	KindBinary
	KindUuid
	KindInt
	KindIntVec
	KindFloat
	KindFloatVec
	KindString
	KindStringVec
)

// Value is a single Matryoshka payload. Exactly one field is meaningful,
// selected by Kind; this mirrors the bit-packed node header's own
// (type, data_type) discriminant rather than using an interface, the same
// plain-struct-with-explicit-tag style squashfs uses for its inode union.
type Value struct {
	Kind Kind

	Container *Container
	Binary    []byte
	Uuid      [16]byte // RFC 4122 byte order, regardless of file endian
	Int       int32
	IntVec    []int32
	Float     float32
	FloatVec  []float32
	String    string
	StringVec []string
}

func NewContainerValue(c *Container) Value { return Value{Kind: KindContainer, Container: c} }
func NewBinaryValue(b []byte) Value        { return Value{Kind: KindBinary, Binary: b} }
func NewUuidValue(u [16]byte) Value        { return Value{Kind: KindUuid, Uuid: u} }
func NewIntValue(i int32) Value            { return Value{Kind: KindInt, Int: i} }
func NewIntVecValue(v []int32) Value       { return Value{Kind: KindIntVec, IntVec: v} }
func NewFloatValue(f float32) Value        { return Value{Kind: KindFloat, Float: f} }
func NewFloatVecValue(v []float32) Value   { return Value{Kind: KindFloatVec, FloatVec: v} }
func NewStringValue(s string) Value        { return Value{Kind: KindString, String: s} }
func NewStringVecValue(v []string) Value   { return Value{Kind: KindStringVec, StringVec: v} }

// Entry is the set of values recorded under one key in a Container: a
// single occurrence projects to len(Values)==1 ("Single" in spec.md's
// terms), repeated occurrences project to len(Values)>1 ("Multiple").
type Entry struct {
	Values []Value
}

// Single reports whether this key occurred exactly once.
func (e *Entry) Single() bool { return len(e.Values) == 1 }

// Container is an ordered key -> Entry mapping: the decoded form of one
// Matryoshka tree level. Iteration order (Keys) is insertion order, which
// on decode is wire order and on encode is caller-append order.
type Container struct {
	order   []string
	entries map[string]*Entry
}

// NewContainer returns an empty Container ready for Append.
func NewContainer() *Container {
	return &Container{entries: make(map[string]*Entry)}
}

// Append records one more occurrence of v under key, preserving first-seen
// key order and growing the key's Entry in occurrence order.
func (c *Container) Append(key string, v Value) {
	e, ok := c.entries[key]
	if !ok {
		e = &Entry{}
		c.entries[key] = e
		c.order = append(c.order, key)
	}
	e.Values = append(e.Values, v)
}

// Keys returns the container's keys in insertion order.
func (c *Container) Keys() []string { return c.order }

// Get returns the Entry for key, if present.
func (c *Container) Get(key string) (*Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Len returns the number of distinct keys.
func (c *Container) Len() int { return len(c.order) }

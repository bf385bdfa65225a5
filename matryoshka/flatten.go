package matryoshka

// flatNode is one entry of the depth-first, pre-order node sequence that
// both the string-table collection pass and the node-stream encode pass
// walk. A Container-kind flatNode carries no payload; its children follow
// immediately afterward at level+1, the same way the node stream itself
// has no explicit child count or end marker.
type flatNode struct {
	level uint8
	id    string // full node id, possibly containing '#'
	value Value
}

// flatten walks c in key/occurrence order starting at level (the root
// container's direct children are emitted at level 1, since the root
// itself is an implicit, never-serialized level 0; see DESIGN.md's
// "Open Question resolved").
func flatten(c *Container, level uint8, out *[]flatNode) {
	for _, key := range c.Keys() {
		entry, _ := c.Get(key)
		for _, v := range entry.Values {
			if v.Kind == KindContainer {
				*out = append(*out, flatNode{level: level, id: key, value: Value{Kind: KindContainer}})
				flatten(v.Container, level+1, out)
				continue
			}
			*out = append(*out, flatNode{level: level, id: key, value: v})
		}
	}
}

// collectStrings gathers every string the node stream will reference —
// each node's key, optional name, and any String/StringVec payload
// contents — in the same order the nodes will be written, deduplicating
// as it goes.
func collectStrings(nodes []flatNode) *stringTable {
	t := newStringTable()
	for _, n := range nodes {
		key, name, hasName := splitKey(n.id)
		t.insert(key)
		if hasName {
			t.insert(name)
		}
		switch n.value.Kind {
		case KindString:
			t.insert(n.value.String)
		case KindStringVec:
			for _, s := range n.value.StringVec {
				t.insert(s)
			}
		}
	}
	return t
}

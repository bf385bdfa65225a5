package matryoshka

// uuidKey is the string-table key that marks a 16-byte Binary payload as
// a UUID special case rather than an opaque blob: a node whose primary
// key (the part before any '#') is exactly "Uuid" and whose payload is
// 16 bytes long decodes to Value.Uuid instead of Value.Binary.
const uuidKey = "Uuid"

// uuidBytesLE reorders a UUID's first three fields (time_low, time_mid,
// time_hi_and_version) into little-endian byte order, the mixed-endian
// "Microsoft GUID" convention a little-endian Matryoshka file stores
// UUIDs in. The last 8 bytes (clock_seq + node) are byte-order
// invariant and carried across unchanged.
func uuidBytesLE(u [16]byte) [16]byte {
	var b [16]byte
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:], u[8:])
	return b
}

// uuidFromBytesLE is the inverse of uuidBytesLE.
func uuidFromBytesLE(b [16]byte) [16]byte {
	var u [16]byte
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:], b[8:])
	return u
}

package keystring

import "encoding/binary"

// Int64 returns a key that orders like v.
func Int64(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v)^(1<<63))
}

// Uint64 returns a key that orders like v.
func Uint64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// String returns s as a key. Strings order bytewise.
func String(s string) []byte {
	return []byte(s)
}

// Compound joins parts into one key that orders by the first part, then the
// second, and so on. A shorter tuple sorts before any tuple it prefixes.
func Compound(parts ...[]byte) []byte {
	var dst []byte
	for _, part := range parts {
		dst = AppendKey(dst, part)
	}
	return dst
}

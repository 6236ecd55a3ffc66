// Package keystring encodes keys so that byte order equals key order.
//
// An encoded key is the raw key with every 0x00 byte written as 0x00 0xFF,
// followed by the terminator 0x00 0x01. No encoding is a prefix of another,
// so a row identifier can be appended to break ties between equal keys:
//
//	entry = esc(key) 00 01 | rowid (8 bytes, big-endian, sign bit flipped)
//
// All entries of key k lie in [AppendKey(nil, k), Successor(AppendKey(nil, k))).
package keystring

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// RowIDLen is the encoded size of a row identifier.
const RowIDLen = 8

const (
	escape     = 0x00
	escaped    = 0xFF
	terminator = 0x01
)

var ErrCorrupt = errors.New("corrupt entry")

// AppendKey appends the encoding of key to dst.
func AppendKey(dst, key []byte) []byte {
	for {
		i := bytes.IndexByte(key, escape)
		if i < 0 {
			break
		}
		dst = append(dst, key[:i+1]...)
		dst = append(dst, escaped)
		key = key[i+1:]
	}
	dst = append(dst, key...)
	return append(dst, escape, terminator)
}

// Successor returns the smallest byte string that sorts after every string
// starting with enc. enc must end with an encoded key.
func Successor(enc []byte) []byte {
	next := append([]byte(nil), enc...)
	next[len(next)-1]++
	return next
}

// DecodeKey decodes the key at the start of b and returns the rest of b.
func DecodeKey(b []byte) (key, rest []byte, err error) {
	key = make([]byte, 0, len(b))
	for {
		i := bytes.IndexByte(b, escape)
		if i < 0 || i+1 >= len(b) {
			err = errors.Wrap(ErrCorrupt, "unterminated key")
			return nil, nil, err
		}
		key = append(key, b[:i]...)
		switch b[i+1] {
		case escaped:
			key = append(key, escape)
		case terminator:
			return key, b[i+2:], nil
		default:
			err = errors.Wrapf(ErrCorrupt, "bad escape byte %#x", b[i+1])
			return nil, nil, err
		}
		b = b[i+2:]
	}
}

// AppendRowID appends the order-preserving encoding of id to dst.
func AppendRowID(dst []byte, id int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(id)^(1<<63))
}

// RowID decodes a row identifier written by AppendRowID.
func RowID(b []byte) (int64, error) {
	if len(b) != RowIDLen {
		return 0, errors.Wrapf(ErrCorrupt, "row id of %d bytes", len(b))
	}
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63)), nil
}

// SplitEntry splits an encoded (key, rowid) entry.
func SplitEntry(entry []byte) (key []byte, id int64, err error) {
	key, rest, err := DecodeKey(entry)
	if err != nil {
		return
	}
	id, err = RowID(rest)
	return
}

// Entry encodes a (key, rowid) entry under prefix.
func Entry(prefix, key []byte, id int64) []byte {
	dst := make([]byte, 0, len(prefix)+len(key)+2+RowIDLen)
	dst = append(dst, prefix...)
	dst = AppendKey(dst, key)
	return AppendRowID(dst, id)
}

// PrefixEnd returns the smallest byte string greater than every string with
// the given prefix, or nil if there is none.
func PrefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
